package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
	"github.com/dmitrijs2005/hicomm/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

const dateLayout = "2006-01-02"

type commentView struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	AuthorID int64  `json:"authorId"`
	Date     string `json:"date"`
}

type postView struct {
	ID       int64  `json:"id"`
	BoardID  string `json:"boardId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	AuthorID int64  `json:"authorId"`
	Date     string `json:"date"`
	Views    int    `json:"views"`
	IsNotice bool   `json:"isNotice"`
}

type postSummaryView struct {
	ID           int64  `json:"id"`
	BoardID      string `json:"boardId"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	AuthorID     int64  `json:"authorId"`
	Date         string `json:"date"`
	Views        int    `json:"views"`
	IsNotice     bool   `json:"isNotice"`
	CommentCount int    `json:"commentCount"`
}

type postListResponse struct {
	Posts      []*postSummaryView `json:"posts"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
}

type postDetailView struct {
	postView
	Comments []*commentView `json:"comments"`
}

type commentsResponse struct {
	Comments []*commentView `json:"comments"`
}

type noticeRequest struct {
	IsNotice *bool `json:"isNotice"`
}

type noticeResponse struct {
	Success  bool `json:"success"`
	IsNotice bool `json:"isNotice"`
}

// authorID renders a withdrawn author as common.WithdrawnAuthorID.
func authorID(id *int64) int64 {
	if id == nil {
		return common.WithdrawnAuthorID
	}
	return *id
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func newPostView(p *models.Post) *postView {
	return &postView{
		ID:       p.ID,
		BoardID:  p.BoardID,
		Title:    p.Title,
		Content:  p.Content,
		Author:   p.AuthorNickname,
		AuthorID: authorID(p.AuthorID),
		Date:     formatDate(p.CreatedAt),
		Views:    p.Views,
		IsNotice: p.IsNotice,
	}
}

func newPostListResponse(page *services.PostPage) postListResponse {
	out := postListResponse{
		Posts:      make([]*postSummaryView, 0, len(page.Posts)),
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	}
	for _, p := range page.Posts {
		out.Posts = append(out.Posts, &postSummaryView{
			ID:           p.ID,
			BoardID:      p.BoardID,
			Title:        p.Title,
			Author:       p.AuthorNickname,
			AuthorID:     authorID(p.AuthorID),
			Date:         formatDate(p.CreatedAt),
			Views:        p.Views,
			IsNotice:     p.IsNotice,
			CommentCount: p.CommentCount,
		})
	}
	return out
}

func newCommentViews(cs []*models.Comment) []*commentView {
	out := make([]*commentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCommentView(c))
	}
	return out
}

func newCommentView(c *models.Comment) *commentView {
	return &commentView{
		ID:       c.ID,
		Content:  c.Content,
		Author:   c.AuthorNickname,
		AuthorID: authorID(c.AuthorID),
		Date:     formatDate(c.CreatedAt),
	}
}

// listPosts serves GET /api/posts?boardId=&page=&limit=.
func (a *API) listPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	page, err := queryInt(q.Get("page"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.board.ListPosts(r.Context(), services.ListPostsRequest{
		BoardID: q.Get("boardId"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPostListResponse(result))
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req services.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	post, err := a.board.CreatePost(r.Context(), auth.IdentityFromContext(r.Context()), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPostView(post))
}

func (a *API) getPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	detail, err := a.board.GetPost(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postDetailView{
		postView: *newPostView(detail.Post),
		Comments: newCommentViews(detail.Comments),
	})
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.board.DeletePost(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// setNotice is admin only; anonymous callers get 403 like any other non-admin.
func (a *API) setNotice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor := auth.IdentityFromContext(r.Context())
	if !auth.CanPinNotice(actor) {
		a.writeError(w, r, common.ErrForbidden)
		return
	}

	id, err := idParam(ps)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req noticeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.IsNotice == nil {
		a.writeError(w, r, errBadBody)
		return
	}

	if err := a.board.SetNotice(r.Context(), actor, id, *req.IsNotice); err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, noticeResponse{Success: true, IsNotice: *req.IsNotice})
}

func (a *API) listComments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// a missing or unparsable postId is left as 0 and rejected by the service
	postID, _ := strconv.ParseInt(r.URL.Query().Get("postId"), 10, 64)

	comments, err := a.board.ListComments(r.Context(), postID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, commentsResponse{Comments: newCommentViews(comments)})
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req services.CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	comment, err := a.board.CreateComment(r.Context(), auth.IdentityFromContext(r.Context()), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCommentView(comment))
}

func (a *API) deleteComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.board.DeleteComment(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
