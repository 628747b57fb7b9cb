package mailchimp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gookit/slog"
	"github.com/pkg/errors"
)

// TagFailure records a subscriber that could not be tagged.
type TagFailure struct {
	EmailAddress string `json:"email_address"`
	Reason       string `json:"reason"`
	Err          error  `json:"-"`
}

// TagReport is the outcome of tagging every subscriber of an interest.
type TagReport struct {
	ListId     string       `json:"list_id"`
	InterestId string       `json:"interest_id"`
	Tag        string       `json:"tag"`
	Tagged     []string     `json:"tagged"`
	Failed     []TagFailure `json:"failed"`
}

// AddTagToSubscriber activates the tag on the subscriber. Mailchimp answers 204 on success;
// anything else is an error.
func (c *Client) AddTagToSubscriber(ctx context.Context, email string, tagName string, listId string) error {
	return c.setTagStatus(ctx, email, tagName, listId, TagActive)
}

// RemoveTagFromSubscriber deactivates the tag on the subscriber.
func (c *Client) RemoveTagFromSubscriber(ctx context.Context, email string, tagName string, listId string) error {
	return c.setTagStatus(ctx, email, tagName, listId, TagInactive)
}

func (c *Client) setTagStatus(ctx context.Context, email string, tagName string, listId string, status string) error {

	path := fmt.Sprintf("/lists/%v/members/%v/tags", listId, SubscriberHash(email))
	payload := memberTagsUpdate{
		Tags: []tagUpdate{{Name: tagName, Status: status}},
	}

	err := c.sendRequest(ctx, http.MethodPost, path, nil, payload, http.StatusNoContent, nil)
	if err != nil {
		slog.Error(fmt.Sprintf("failed to set tag '%v' to %v on %v: %v", tagName, status, email, err))
		return errors.Wrapf(err, "unable to set tag '%v' on subscriber %v", tagName, email)
	}

	slog.Info(fmt.Sprintf("tag '%v' successfully set to %v on %v", tagName, status, email))
	return nil
}

// AddTagToInterestSubscribers tags, one at a time, every subscriber that belongs to the interest.
// A failure on one subscriber is recorded in the report and does not stop the rest.
// The returned error is only set when the subscribers could not be fetched or ctx is done;
// the report then holds what was tagged before the interruption.
func (c *Client) AddTagToInterestSubscribers(ctx context.Context, listId string, interestId string, tagName string) (*TagReport, error) {

	report := &TagReport{
		ListId:     listId,
		InterestId: interestId,
		Tag:        tagName,
		Tagged:     []string{},
		Failed:     []TagFailure{},
	}

	subscribers, err := c.GetSubscribersWithInterest(ctx, listId, interestId)
	if err != nil {
		return report, err
	}

	if len(subscribers) == 0 {
		slog.Info(fmt.Sprintf("no subscribers found for interest %v", interestId))
		return report, nil
	}

	for _, email := range subscribers {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, "tagging interrupted")
		}

		err := c.AddTagToSubscriber(ctx, email, tagName, listId)
		if err != nil {
			// a cancelled request is not the subscriber's failure
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, errors.Wrap(ctxErr, "tagging interrupted")
			}
			report.Failed = append(report.Failed, TagFailure{
				EmailAddress: email,
				Reason:       err.Error(),
				Err:          err,
			})
			continue
		}
		report.Tagged = append(report.Tagged, email)
	}

	slog.Info(fmt.Sprintf("tagged %v of %v subscribers of interest %v with '%v' (%v failed)",
		len(report.Tagged), len(subscribers), interestId, tagName, len(report.Failed)))

	return report, nil
}
