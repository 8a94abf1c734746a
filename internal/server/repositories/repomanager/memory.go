package repomanager

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/dbx"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/comments"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/posts"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in maps. It follows the
// postgres schema's rules (unique usernames, authors nulled on account
// deletion, comments removed with their post) and ignores the DBTX it is
// handed, so transactions are not isolated.
type InMemoryRepositoryManager struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	posts    map[int64]*models.Post
	comments map[int64]*models.Comment
	nextID   int64
	err      error
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    map[int64]*models.User{},
		posts:    map[int64]*models.Post{},
		comments: map[int64]*models.Comment{},
	}
}

// FailWith makes every subsequent repository call return err. nil restores
// normal operation.
func (m *InMemoryRepositoryManager) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return memUsers{m} }

func (m *InMemoryRepositoryManager) Posts(dbx.DBTX) posts.Repository { return memPosts{m} }

func (m *InMemoryRepositoryManager) Comments(dbx.DBTX) comments.Repository { return memComments{m} }

func (m *InMemoryRepositoryManager) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *InMemoryRepositoryManager) nickname(id *int64) string {
	if id == nil {
		return ""
	}
	if u, ok := m.users[*id]; ok {
		return u.Nickname
	}
	return ""
}

type memUsers struct{ m *InMemoryRepositoryManager }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	for _, existing := range r.m.users {
		if existing.Username == u.Username {
			return nil, common.ErrConflict
		}
	}
	u.ID = r.m.id()
	u.CreatedAt = time.Now()
	cp := *u
	r.m.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) FindByLogin(_ context.Context, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	for _, u := range r.m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) FindByID(_ context.Context, id int64) (*models.Identity, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Identity(), nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return r.m.err
	}
	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.users, id)
	for _, p := range r.m.posts {
		if p.AuthorID != nil && *p.AuthorID == id {
			p.AuthorID = nil
		}
	}
	for _, c := range r.m.comments {
		if c.AuthorID != nil && *c.AuthorID == id {
			c.AuthorID = nil
		}
	}
	return nil
}

func (r memUsers) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return r.m.err
	}
	u, ok := r.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

type memPosts struct{ m *InMemoryRepositoryManager }

func (r memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	p.ID = r.m.id()
	p.CreatedAt = time.Now()
	cp := *p
	r.m.posts[p.ID] = &cp
	return p, nil
}

func (r memPosts) Get(_ context.Context, id int64) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	p, ok := r.m.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	cp.AuthorNickname = r.m.nickname(p.AuthorID)
	return &cp, nil
}

func (r memPosts) List(_ context.Context, boardID string, limit, offset int) ([]*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}

	counts := map[int64]int{}
	for _, c := range r.m.comments {
		counts[c.PostID]++
	}

	all := make([]*models.Post, 0)
	for _, p := range r.m.posts {
		if p.BoardID != boardID {
			continue
		}
		cp := *p
		cp.AuthorNickname = r.m.nickname(p.AuthorID)
		cp.CommentCount = counts[p.ID]
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.IsNotice != b.IsNotice {
			return a.IsNotice
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if offset >= len(all) {
		return []*models.Post{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r memPosts) Count(_ context.Context, boardID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return 0, r.m.err
	}
	var n int64
	for _, p := range r.m.posts {
		if p.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

func (r memPosts) IncrementViews(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return r.m.err
	}
	p, ok := r.m.posts[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Views++
	return nil
}

func (r memPosts) FindAuthor(_ context.Context, id int64) (*int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	p, ok := r.m.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.AuthorID == nil {
		return nil, nil
	}
	author := *p.AuthorID
	return &author, nil
}

func (r memPosts) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return r.m.err
	}
	if _, ok := r.m.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.posts, id)
	for cid, c := range r.m.comments {
		if c.PostID == id {
			delete(r.m.comments, cid)
		}
	}
	return nil
}

func (r memPosts) SetNotice(_ context.Context, id int64, isNotice bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return r.m.err
	}
	p, ok := r.m.posts[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.IsNotice = isNotice
	return nil
}

type memComments struct{ m *InMemoryRepositoryManager }

func (r memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	if _, ok := r.m.posts[c.PostID]; !ok {
		return nil, common.ErrorNotFound
	}
	c.ID = r.m.id()
	c.CreatedAt = time.Now()
	cp := *c
	r.m.comments[c.ID] = &cp
	return c, nil
}

func (r memComments) ListByPost(_ context.Context, postID int64) ([]*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	out := make([]*models.Comment, 0)
	for _, c := range r.m.comments {
		if c.PostID == postID {
			cp := *c
			cp.AuthorNickname = r.m.nickname(c.AuthorID)
			out = append(out, &cp)
		}
	}
	// ids grow with insertion, so id order is creation order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memComments) FindAuthor(_ context.Context, id int64) (*int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return nil, r.m.err
	}
	c, ok := r.m.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if c.AuthorID == nil {
		return nil, nil
	}
	author := *c.AuthorID
	return &author, nil
}

func (r memComments) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.err != nil {
		return r.m.err
	}
	if _, ok := r.m.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.comments, id)
	return nil
}
