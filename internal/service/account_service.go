package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/solodevhq/megaphone/internal/models"
	"github.com/solodevhq/megaphone/internal/repository"
)

const defaultCommentLimit = 100

type AccountService interface {
	ListAccounts(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	RemoveAccount(ctx context.Context, userID, accountID int64) error
	ListComments(ctx context.Context, userID, appID int64, limit int) ([]*models.CommunityComment, error)
}

type accountService struct {
	ar repository.SocialAccountRepository
	mr repository.AppRepository
	cr repository.CommentRepository
}

func NewAccountService(ar repository.SocialAccountRepository, mr repository.AppRepository, cr repository.CommentRepository) AccountService {
	return &accountService{ar: ar, mr: mr, cr: cr}
}

func (s *accountService) ListAccounts(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	accounts, err := s.ar.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts")
	}
	return accounts, nil
}

func (s *accountService) RemoveAccount(ctx context.Context, userID, accountID int64) error {
	if userID == 0 || accountID == 0 {
		err := errors.New("account id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.ar.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err := s.ar.Remove(ctx, accountID); err != nil {
		return fmt.Errorf("error removing account")
	}

	return nil
}

func (s *accountService) ListComments(ctx context.Context, userID, appID int64, limit int) ([]*models.CommunityComment, error) {
	owns, err := s.mr.CheckByUserID(ctx, appID, userID)
	if err != nil {
		return nil, err
	}
	if !owns {
		err := errors.New("app does not exist")
		slog.Info(err.Error())
		return nil, err
	}

	if limit <= 0 || limit > defaultCommentLimit {
		limit = defaultCommentLimit
	}

	comments, err := s.cr.ListByAppID(ctx, appID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing comments")
	}
	return comments, nil
}
