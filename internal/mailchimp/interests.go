package mailchimp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gookit/slog"
	"github.com/pkg/errors"
)

type InterestCategory struct {
	Id           string `json:"id"`
	ListId       string `json:"list_id"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"display_order"`
	Type         string `json:"type"`
}

type InterestCategoriesResults struct {
	Categories []InterestCategory `json:"categories"`
	TotalItems int                `json:"total_items"`
}

type Interest struct {
	Id              string `json:"id"`
	CategoryId      string `json:"category_id"`
	ListId          string `json:"list_id"`
	Name            string `json:"name"`
	SubscriberCount string `json:"subscriber_count"`
	DisplayOrder    int    `json:"display_order"`
}

type InterestsResults struct {
	Interests  []Interest `json:"interests"`
	TotalItems int        `json:"total_items"`
}

// GetInterestCategories returns the interest categories of a list. On failure the slice is empty.
func (c *Client) GetInterestCategories(ctx context.Context, listId string) ([]InterestCategory, error) {

	var result InterestCategoriesResults
	err := c.sendRequest(ctx, http.MethodGet, fmt.Sprintf("/lists/%v/interest-categories", listId), nil, nil, http.StatusOK, &result)
	if err != nil {
		slog.Error(fmt.Sprintf("failed to retrieve interest categories of list %v: %v", listId, err))
		return []InterestCategory{}, errors.Wrap(err, "unable to get the interest categories")
	}

	if result.Categories == nil {
		return []InterestCategory{}, nil
	}
	return result.Categories, nil
}

// GetInterests returns the interests of one category. On failure the slice is empty.
func (c *Client) GetInterests(ctx context.Context, listId string, categoryId string) ([]Interest, error) {

	path := fmt.Sprintf("/lists/%v/interest-categories/%v/interests", listId, categoryId)

	var result InterestsResults
	err := c.sendRequest(ctx, http.MethodGet, path, nil, nil, http.StatusOK, &result)
	if err != nil {
		slog.Error(fmt.Sprintf("failed to retrieve interests of category %v: %v", categoryId, err))
		return []Interest{}, errors.Wrap(err, "unable to get the interests")
	}

	if result.Interests == nil {
		return []Interest{}, nil
	}
	return result.Interests, nil
}
