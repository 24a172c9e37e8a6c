package queue

import (
	job "github.com/solodevhq/megaphone/internal/jobs"
)

type Queue struct {
	publisher *job.PublishJob
}

func NewQueue(publisher *job.PublishJob) *Queue {
	return &Queue{publisher: publisher}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
