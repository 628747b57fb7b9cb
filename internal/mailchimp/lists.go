package mailchimp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

type ListsResults struct {
	Lists []List `json:"lists"`
}

type List struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
}

type Stats struct {
	MemberCount   int `json:"member_count"`
	TotalContacts int `json:"total_contacts"`
}

// GetLists returns the lists (audiences) of the account that owns the api key.
func (c *Client) GetLists(ctx context.Context) ([]List, error) {

	query := url.Values{}
	query.Set("count", strconv.Itoa(pageSize))
	query.Set("include_total_contacts", "true")

	var pageResult ListsResults
	err := c.sendRequest(ctx, http.MethodGet, "/lists", query, nil, http.StatusOK, &pageResult)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get the lists")
	}

	if pageResult.Lists == nil {
		return []List{}, nil
	}
	return pageResult.Lists, nil
}
