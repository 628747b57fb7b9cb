package mailchimp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gookit/slog"
	"github.com/pkg/errors"
)

func (c *Client) getMembersPage(ctx context.Context, listId string, offset int) (*MembersResults, error) {

	query := url.Values{}
	query.Set("status", StatusSubscribed)
	query.Set("count", strconv.Itoa(pageSize))
	query.Set("offset", strconv.Itoa(offset))

	var pageResult MembersResults
	err := c.sendRequest(ctx, http.MethodGet, fmt.Sprintf("/lists/%v/members", listId), query, nil, http.StatusOK, &pageResult)
	if err != nil {
		return nil, err
	}

	return &pageResult, nil
}

// GetSubscribers returns every member of the list whose status is "subscribed", fetching
// pages of 1000 until a short page comes back.
//
// If a page fails, the members collected so far are returned together with the error.
func (c *Client) GetSubscribers(ctx context.Context, listId string) ([]Member, error) {

	allSubscribers := []Member{}

	for offset := 0; ; offset += pageSize {
		page, err := c.getMembersPage(ctx, listId, offset)
		if err != nil {
			slog.Error(fmt.Sprintf("failed to retrieve subscribers of list %v at offset %v: %v", listId, offset, err))
			return allSubscribers, errors.Wrapf(err, "unable to get the page of members at offset %v", offset)
		}

		allSubscribers = append(allSubscribers, page.Members...)

		// a short page means there are no more records
		if len(page.Members) < pageSize {
			break
		}
	}

	slog.Info(fmt.Sprintf("fetched %v subscribers of list %v", len(allSubscribers), listId))

	return allSubscribers, nil
}

// GetSubscribersWithInterest returns the email addresses of subscribed members that belong to
// the interest. Only the first page is requested, so at most 1000 addresses come back.
func (c *Client) GetSubscribersWithInterest(ctx context.Context, listId string, interestId string) ([]string, error) {

	query := url.Values{}
	query.Set("fields", "members.email_address")
	query.Set("interest_id", interestId)
	query.Set("status", StatusSubscribed)
	query.Set("count", strconv.Itoa(pageSize))

	var pageResult MembersResults
	err := c.sendRequest(ctx, http.MethodGet, fmt.Sprintf("/lists/%v/members", listId), query, nil, http.StatusOK, &pageResult)
	if err != nil {
		slog.Error(fmt.Sprintf("failed to fetch subscribers of list %v with interest %v: %v", listId, interestId, err))
		return []string{}, errors.Wrap(err, "unable to get the members with interest")
	}

	emails := make([]string, 0, len(pageResult.Members))
	for _, m := range pageResult.Members {
		emails = append(emails, m.EmailAddress)
	}

	if len(emails) == pageSize {
		slog.Warn(fmt.Sprintf("interest %v returned a full page of %v subscribers, the result may be truncated", interestId, pageSize))
	}

	return emails, nil
}

// AddSubscriberToGroup marks the subscriber as a member of the interest (group).
func (c *Client) AddSubscriberToGroup(ctx context.Context, email string, groupId string, listId string) error {
	return c.setGroupMembership(ctx, email, groupId, listId, true)
}

// RemoveSubscriberFromGroup clears the subscriber's membership of the interest (group).
func (c *Client) RemoveSubscriberFromGroup(ctx context.Context, email string, groupId string, listId string) error {
	return c.setGroupMembership(ctx, email, groupId, listId, false)
}

func (c *Client) setGroupMembership(ctx context.Context, email string, groupId string, listId string, member bool) error {

	path := fmt.Sprintf("/lists/%v/members/%v", listId, SubscriberHash(email))
	payload := memberInterestsUpdate{
		Interests: map[string]bool{groupId: member},
	}

	err := c.sendRequest(ctx, http.MethodPatch, path, nil, payload, http.StatusOK, nil)
	if err != nil {
		slog.Error(fmt.Sprintf("failed to update %v: %v", email, err))
		return errors.Wrapf(err, "unable to update the interests of subscriber %v", email)
	}

	slog.Info(fmt.Sprintf("subscriber %v updated successfully", email))
	return nil
}
