package statemgr

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ocha-mailchimp:tag-run"

// Run describes the last completed tagging of an interest's subscribers.
type Run struct {
	ListId      string    `json:"list_id"`
	InterestId  string    `json:"interest_id"`
	Tag         string    `json:"tag"`
	CompletedAt time.Time `json:"completed_at"`
	Tagged      int       `json:"tagged"`
	Failed      int       `json:"failed"`
}

// Redis keeps the run history of tag jobs. It stores no Mailchimp data.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr string, password string, db int) *Redis {

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Redis{
		client: client,
	}
}

func runKey(listId string, interestId string, tag string) string {
	return fmt.Sprintf("%v:%v:%v:%v", keyPrefix, listId, interestId, tag)
}

// Ping checks that redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "unable to connect to redis")
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) SetCompletedRun(ctx context.Context, run Run) error {
	err := r.client.HSet(ctx, runKey(run.ListId, run.InterestId, run.Tag),
		"completed_at", run.CompletedAt.UTC().Format(time.RFC3339),
		"tagged", run.Tagged,
		"failed", run.Failed,
	).Err()
	if err != nil {
		return errors.Wrap(err, "unable to save the completed run")
	}
	return nil
}

// GetLastRun returns nil when no run was recorded for the key.
func (r *Redis) GetLastRun(ctx context.Context, listId string, interestId string, tag string) (*Run, error) {
	val, err := r.client.HGetAll(ctx, runKey(listId, interestId, tag)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read the last run")
	}
	if len(val) == 0 {
		// key does not exist
		return nil, nil
	}

	completedAt, err := time.Parse(time.RFC3339, val["completed_at"])
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse the last run timestamp")
	}
	tagged, err := strconv.Atoi(val["tagged"])
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse the tagged count")
	}
	failed, err := strconv.Atoi(val["failed"])
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse the failed count")
	}

	return &Run{
		ListId:      listId,
		InterestId:  interestId,
		Tag:         tag,
		CompletedAt: completedAt,
		Tagged:      tagged,
		Failed:      failed,
	}, nil
}
