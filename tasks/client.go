package tasks

import (
	"context"

	"text2phenotype.com/hmmtag/redis"
)

const TaggingDB redis.DB = 0

// Client gives access to task documents stored in Redis.
type Client struct {
	Tagging TaggingTasks
}

func NewClient() (Client, error) {
	taggingRedisClient, err := redis.NewClient(TaggingDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Tagging: TaggingTasks{client: taggingRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Tagging.client.Close()
}

type TaggingTasks struct {
	client redis.Client
}

func (tasks TaggingTasks) Get(ctx context.Context, redisKey string) (*TaggingTask, error) {
	var task TaggingTask
	if err := tasks.client.GetDocument(ctx, redisKey, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks TaggingTasks) Update(ctx context.Context, redisKey string, updateFunc func(task *TaggingTask)) error {
	var task TaggingTask
	return tasks.client.UpdateDocument(ctx, redisKey, &task, func() {
		updateFunc(&task)
	})
}
