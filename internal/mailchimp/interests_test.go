package mailchimp

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInterestCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/lists/list1/interest-categories", r.URL.Path)
		w.Write([]byte(`{"categories":[{"id":"cat1","list_id":"list1","title":"Topics","display_order":0,"type":"checkboxes"}],"total_items":1}`))
	})

	categories, err := client.GetInterestCategories(context.Background(), "list1")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, InterestCategory{Id: "cat1", ListId: "list1", Title: "Topics", Type: "checkboxes"}, categories[0])
}

func TestGetInterestCategories_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"title":"Resource Not Found","status":404}`))
	})

	categories, err := client.GetInterestCategories(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestGetInterests(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/list1/interest-categories/cat1/interests", r.URL.Path)
		w.Write([]byte(`{"interests":[{"id":"int1","category_id":"cat1","list_id":"list1","name":"Humanitarian data","subscriber_count":"42","display_order":1}]}`))
	})

	interests, err := client.GetInterests(context.Background(), "list1", "cat1")
	require.NoError(t, err)
	require.Len(t, interests, 1)
	assert.Equal(t, "int1", interests[0].Id)
	assert.Equal(t, "Humanitarian data", interests[0].Name)
	assert.Equal(t, "42", interests[0].SubscriberCount)
}

func TestGetInterests_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	interests, err := client.GetInterests(context.Background(), "list1", "cat1")
	require.Error(t, err)
	assert.NotNil(t, interests)
	assert.Empty(t, interests)
}
