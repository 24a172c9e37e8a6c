package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/solodevhq/megaphone/internal/models"
	"github.com/solodevhq/megaphone/internal/repository"
	"github.com/solodevhq/megaphone/internal/transfer"
)

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.SocialPost, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.SocialPost, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr    repository.SocialPostRepository
	ar    repository.AppRepository
	media *MediaService
}

func NewPostService(pr repository.SocialPostRepository, ar repository.AppRepository, media *MediaService) PostService {
	return &postService{pr: pr, ar: ar, media: media}
}

func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, 0, err
	}
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return 0, 0, err
	}
	if len(pc.Platforms) == 0 {
		err := errors.New("no platforms selected")
		slog.Info(err.Error())
		return 0, 0, err
	}

	scheduledFor, err := time.Parse("2006-01-02T15:04", pc.ScheduledFor)
	if err != nil {
		err = fmt.Errorf("invalid scheduled time format: %w", err)
		slog.Error(err.Error())
		return 0, 0, err
	}

	owns, err := s.ar.CheckByUserID(ctx, pc.AppID, userID)
	if err != nil {
		return 0, 0, err
	}
	if !owns {
		err := errors.New("app does not exist")
		slog.Info(err.Error())
		return 0, 0, err
	}

	mediaURLs := pc.MediaURLs
	for _, file := range files {
		fileURL, err := s.uploadFile(ctx, file)
		if err != nil {
			return 0, 0, fmt.Errorf("error uploading media: %w", err)
		}
		mediaURLs = append(mediaURLs, fileURL)
	}

	post := models.SocialPost{
		AppID:           pc.AppID,
		UserID:          userID,
		Content:         pc.Content,
		Title:           pc.Title,
		Platforms:       pc.Platforms,
		PlatformContent: pc.PlatformContent,
		MediaURLs:       mediaURLs,
		ScheduledFor:    scheduledFor,
		Status:          models.PostStatusScheduled,
	}

	postID, err := s.pr.Create(ctx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	delay := time.Until(scheduledFor)
	if delay < 0 {
		delay = 0
	}

	return postID, delay, nil
}

func (s *postService) uploadFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	fileContent, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return "", fmt.Errorf("error reading file content: %w", err)
	}

	return s.media.Upload(ctx, fileBytes)
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.SocialPost, error) {
	if userID == 0 || postID == 0 {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info")
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.SocialPost, error) {
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if userID == 0 || postID == 0 {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post")
	}

	return nil
}
