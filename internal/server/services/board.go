package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/dbx"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

// DefaultBoardID is used when a post names no board.
const DefaultBoardID = "free"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListPostsRequest selects one page of a board. Zero values mean
// DefaultBoardID, page 1 and DefaultPageSize.
type ListPostsRequest struct {
	BoardID string
	Page    int
	Limit   int
}

func (r ListPostsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(MaxPageSize)),
	)
}

// PostPage is one page of a board listing. Total counts every post on the
// board.
type PostPage struct {
	Posts      []*models.Post
	Total      int64
	Page       int
	TotalPages int
}

type CreatePostRequest struct {
	BoardID  string `json:"boardId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsNotice bool   `json:"isNotice"`
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

type CreateCommentRequest struct {
	PostID  int64  `json:"postId"`
	Content string `json:"content"`
}

func (r CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Content, validation.Required),
	)
}

// PostDetail is a post together with its comments, oldest first.
type PostDetail struct {
	Post     *models.Post
	Comments []*models.Comment
}

// BoardService implements posts and comments. Ownership checks go through
// the auth predicates and run in the same transaction as the delete.
type BoardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBoardService(db *sql.DB, m repomanager.RepositoryManager) *BoardService {
	return &BoardService{db: db, repomanager: m}
}

// CreatePost stores a post by actor. The notice flag is kept only for
// actors allowed to pin notices and silently dropped otherwise.
func (s *BoardService) CreatePost(ctx context.Context, actor *models.Identity, req CreatePostRequest) (*models.Post, error) {
	if actor == nil {
		return nil, common.ErrorUnauthorized
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	boardID := req.BoardID
	if boardID == "" {
		boardID = DefaultBoardID
	}

	authorID := actor.ID
	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		BoardID:  boardID,
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: &authorID,
		IsNotice: req.IsNotice && auth.CanPinNotice(actor),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.AuthorNickname = actor.Nickname

	return post, nil
}

// ListPosts returns a page of the board, notices first and then newest
// first, each post carrying its comment count.
func (s *BoardService) ListPosts(ctx context.Context, req ListPostsRequest) (*PostPage, error) {
	if req.BoardID == "" {
		req.BoardID = DefaultBoardID
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = DefaultPageSize
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	page := PostPage{Page: req.Page}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		posts := s.repomanager.Posts(tx)

		list, err := posts.List(ctx, req.BoardID, req.Limit, (req.Page-1)*req.Limit)
		if err != nil {
			return err
		}
		total, err := posts.Count(ctx, req.BoardID)
		if err != nil {
			return err
		}

		page.Posts = list
		for _, p := range page.Posts {
			withdrawnPostAuthor(p)
		}
		page.Total = total
		page.TotalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	return &page, nil
}

// GetPost counts a view and returns the post with its comments.
func (s *BoardService) GetPost(ctx context.Context, id int64) (*PostDetail, error) {
	if id <= 0 {
		return nil, invalid(errors.New("id: must be a positive integer"))
	}

	var detail PostDetail
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		posts := s.repomanager.Posts(tx)
		if err := posts.IncrementViews(ctx, id); err != nil {
			return err
		}

		post, err := posts.Get(ctx, id)
		if err != nil {
			return err
		}

		comments, err := s.repomanager.Comments(tx).ListByPost(ctx, id)
		if err != nil {
			return err
		}

		detail.Post = withdrawnPostAuthor(post)
		detail.Comments = withdrawnCommentAuthors(comments)
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading post: %w", err)
	}

	return &detail, nil
}

// DeletePost removes a post and its comments if actor owns it or is an admin.
func (s *BoardService) DeletePost(ctx context.Context, actor *models.Identity, id int64) error {
	if actor == nil {
		return common.ErrorUnauthorized
	}

	return s.guardedDelete(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		posts := s.repomanager.Posts(tx)
		owner, err := posts.FindAuthor(ctx, id)
		if err != nil {
			return err
		}
		if !auth.CanDelete(actor, owner) {
			return common.ErrForbidden
		}
		return posts.Delete(ctx, id)
	})
}

// DeleteComment removes a comment if actor owns it or is an admin.
func (s *BoardService) DeleteComment(ctx context.Context, actor *models.Identity, id int64) error {
	if actor == nil {
		return common.ErrorUnauthorized
	}

	return s.guardedDelete(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		comments := s.repomanager.Comments(tx)
		owner, err := comments.FindAuthor(ctx, id)
		if err != nil {
			return err
		}
		if !auth.CanDelete(actor, owner) {
			return common.ErrForbidden
		}
		return comments.Delete(ctx, id)
	})
}

func (s *BoardService) guardedDelete(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	err := dbx.WithTx(ctx, s.db, nil, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	case errors.Is(err, common.ErrForbidden):
		return common.ErrForbidden
	default:
		return fmt.Errorf("error deleting: %w", err)
	}
}

// SetNotice pins or unpins a post. Admin only.
func (s *BoardService) SetNotice(ctx context.Context, actor *models.Identity, id int64, isNotice bool) error {
	if !auth.CanPinNotice(actor) {
		return common.ErrForbidden
	}

	if err := s.repomanager.Posts(s.db).SetNotice(ctx, id, isNotice); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error updating post: %w", err)
	}
	return nil
}

// ListComments returns the comments of a post, oldest first.
func (s *BoardService) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if postID <= 0 {
		return nil, invalid(errors.New("postId: must be a positive integer"))
	}

	comments, err := s.repomanager.Comments(s.db).ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return withdrawnCommentAuthors(comments), nil
}

func (s *BoardService) CreateComment(ctx context.Context, actor *models.Identity, req CreateCommentRequest) (*models.Comment, error) {
	if actor == nil {
		return nil, common.ErrorUnauthorized
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	authorID := actor.ID
	comment, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		PostID:   req.PostID,
		AuthorID: &authorID,
		Content:  req.Content,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error creating comment: %w", err)
	}
	comment.AuthorNickname = actor.Nickname

	return comment, nil
}

func withdrawnPostAuthor(p *models.Post) *models.Post {
	if p.AuthorID == nil {
		p.AuthorNickname = common.WithdrawnAuthorName
	}
	return p
}

func withdrawnCommentAuthors(cs []*models.Comment) []*models.Comment {
	for _, c := range cs {
		if c.AuthorID == nil {
			c.AuthorNickname = common.WithdrawnAuthorName
		}
	}
	return cs
}
