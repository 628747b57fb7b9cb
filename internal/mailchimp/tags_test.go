package mailchimp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTagToSubscriber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lists/list1/members/"+SubscriberHash("user@example.com")+"/tags", r.URL.Path)

		var body memberTagsUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []tagUpdate{{Name: "vip", Status: "active"}}, body.Tags)

		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.AddTagToSubscriber(context.Background(), "User@Example.com", "vip", "list1"))
}

func TestAddTagToSubscriber_OnlyNoContentIsSuccess(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"title":"x","detail":"y"}`))
			})

			err := client.AddTagToSubscriber(context.Background(), "user@example.com", "vip", "list1")
			require.Error(t, err)
			assert.True(t, isErrorStatus(err, status))
		})
	}
}

func TestRemoveTagFromSubscriber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body memberTagsUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []tagUpdate{{Name: "vip", Status: "inactive"}}, body.Tags)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.RemoveTagFromSubscriber(context.Background(), "user@example.com", "vip", "list1"))
}

func TestAddTagToInterestSubscribers(t *testing.T) {
	failing := SubscriberHash("b@example.com")
	var tagged []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/lists/list1/members":
			assert.Equal(t, "int1", r.URL.Query().Get("interest_id"))
			w.Write([]byte(`{"members":[{"email_address":"a@example.com"},{"email_address":"b@example.com"},{"email_address":"c@example.com"}]}`))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/tags"):
			if strings.Contains(r.URL.Path, failing) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"title":"Invalid Resource","detail":"member is archived"}`))
				return
			}
			tagged = append(tagged, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	report, err := client.AddTagToInterestSubscribers(context.Background(), "list1", "int1", "vip")
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com", "c@example.com"}, report.Tagged)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "b@example.com", report.Failed[0].EmailAddress)
	assert.True(t, IsBadRequest(report.Failed[0].Err))
	assert.Contains(t, report.Failed[0].Reason, "member is archived")

	// processing continued after the failure, in order
	assert.Equal(t, []string{
		"/lists/list1/members/" + SubscriberHash("a@example.com") + "/tags",
		"/lists/list1/members/" + SubscriberHash("c@example.com") + "/tags",
	}, tagged)
}

func TestAddTagToInterestSubscribers_NoSubscribers(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"members":[]}`))
	})

	report, err := client.AddTagToInterestSubscribers(context.Background(), "list1", "int1", "vip")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Empty(t, report.Tagged)
	assert.Empty(t, report.Failed)
}

func TestAddTagToInterestSubscribers_FetchFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"title":"API Key Invalid","detail":"Your API key may be invalid"}`))
	})

	report, err := client.AddTagToInterestSubscribers(context.Background(), "list1", "int1", "vip")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	require.NotNil(t, report)
	assert.Empty(t, report.Tagged)
}

func TestAddTagToInterestSubscribers_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			page := MembersResults{}
			for i := 0; i < 500; i++ {
				page.Members = append(page.Members, Member{EmailAddress: fmt.Sprintf("user%d@example.com", i)})
			}
			json.NewEncoder(w).Encode(page)
			return
		}

		if posts.Add(1) == 2 {
			// interrupt the run while the second tag request is in flight
			cancel()
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})

	report, err := client.AddTagToInterestSubscribers(ctx, "list1", "int1", "vip")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, int32(2), posts.Load())
	assert.Equal(t, []string{"user0@example.com"}, report.Tagged)
	assert.Empty(t, report.Failed)
}
