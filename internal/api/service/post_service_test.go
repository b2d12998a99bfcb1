package service

import (
	"context"
	"ctchen222/Simple-Blog/internal/api/models"
	"ctchen222/Simple-Blog/internal/api/repository/mocks"
	"ctchen222/Simple-Blog/internal/auth"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 789_000_000, time.UTC)

func newPostServiceForTest(t *testing.T) (PostService, *mocks.MockPostRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPostRepository(ctrl)
	return NewPostService(repo, func() time.Time { return fixedNow }), repo
}

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name      string
		req       models.PostRequest
		wantTitle string
		wantBody  string
		want      []string
	}{
		{"valid", models.PostRequest{Title: " Hello ", Body: "World"}, "Hello", "World", nil},
		{"both empty", models.PostRequest{}, "", "", []string{MsgTitleRequired, MsgBodyRequired}},
		{"markup only", models.PostRequest{Title: "<b></b>", Body: " <script></script> "}, "", "", []string{MsgTitleRequired, MsgBodyRequired}},
		{"tags stripped", models.PostRequest{Title: "<h1>Hi</h1>", Body: "<p>there</p>"}, "Hi", "there", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			got := ValidatePost(&req)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTitle, req.Title)
			assert.Equal(t, tt.wantBody, req.Body)
		})
	}
}

func TestCreatePost(t *testing.T) {
	svc, repo := newPostServiceForTest(t)

	repo.EXPECT().CreatePost(gomock.Any(), "Hello", "World", int64(1), "2024-03-09T14:05:06.789Z").
		Return(&models.Post{ID: 10, Title: "Hello", Body: "World", AuthorID: 1, CreatedDate: "2024-03-09T14:05:06.789Z"}, nil)

	post, err := svc.Create(context.Background(), 1, &models.PostRequest{Title: "Hello", Body: "World"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), post.ID)
}

func TestCreatePost_ValidationFailure(t *testing.T) {
	svc, _ := newPostServiceForTest(t)

	_, err := svc.Create(context.Background(), 1, &models.PostRequest{Title: "Hello"})
	messages, ok := ValidationMessages(err)
	require.True(t, ok)
	assert.Equal(t, []string{MsgBodyRequired}, messages)
}

func TestViewPost(t *testing.T) {
	post := &models.PostWithAuthor{Post: models.Post{ID: 3, AuthorID: 1, Title: "Hello"}, Username: "alice"}

	tests := []struct {
		name   string
		viewer *auth.Identity
		want   bool
	}{
		{"author", &auth.Identity{UserID: 1, Username: "alice"}, true},
		{"other user", &auth.Identity{UserID: 2, Username: "bob"}, false},
		{"anonymous", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newPostServiceForTest(t)
			repo.EXPECT().GetPostWithAuthor(gomock.Any(), int64(3)).Return(post, nil)

			got, isAuthor, err := svc.View(context.Background(), 3, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, post, got)
			assert.Equal(t, tt.want, isAuthor)
		})
	}
}

func TestViewPost_NotFound(t *testing.T) {
	svc, repo := newPostServiceForTest(t)
	repo.EXPECT().GetPostWithAuthor(gomock.Any(), int64(99)).Return(nil, nil)

	_, _, err := svc.View(context.Background(), 99, nil)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdatePost(t *testing.T) {
	owned := &models.Post{ID: 3, AuthorID: 1, Title: "Old", Body: "Old body"}

	t.Run("owner", func(t *testing.T) {
		svc, repo := newPostServiceForTest(t)
		repo.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(owned, nil)
		repo.EXPECT().UpdatePost(gomock.Any(), int64(3), "New", "New body").Return(nil)

		post, err := svc.Update(context.Background(), 3, 1, &models.PostRequest{Title: "New", Body: "New body"})
		require.NoError(t, err)
		assert.Equal(t, "New", post.Title)
	})

	t.Run("not the author", func(t *testing.T) {
		svc, repo := newPostServiceForTest(t)
		repo.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(owned, nil)

		_, err := svc.Update(context.Background(), 3, 2, &models.PostRequest{Title: "New", Body: "New body"})
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		svc, repo := newPostServiceForTest(t)
		repo.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(nil, nil)

		_, err := svc.Update(context.Background(), 3, 1, &models.PostRequest{Title: "New", Body: "New body"})
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("invalid returns draft", func(t *testing.T) {
		svc, repo := newPostServiceForTest(t)
		repo.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(owned, nil)

		draft, err := svc.Update(context.Background(), 3, 1, &models.PostRequest{Title: "<i>New</i>", Body: ""})
		messages, ok := ValidationMessages(err)
		require.True(t, ok)
		assert.Equal(t, []string{MsgBodyRequired}, messages)
		require.NotNil(t, draft)
		assert.Equal(t, int64(3), draft.ID)
		assert.Equal(t, "New", draft.Title)
		assert.Equal(t, "Old", owned.Title)
	})
}

func TestDeletePost(t *testing.T) {
	owned := &models.Post{ID: 3, AuthorID: 1}

	t.Run("owner", func(t *testing.T) {
		svc, repo := newPostServiceForTest(t)
		repo.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(owned, nil)
		repo.EXPECT().DeletePost(gomock.Any(), int64(3)).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), 3, 1))
	})

	t.Run("not the author", func(t *testing.T) {
		svc, repo := newPostServiceForTest(t)
		repo.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(owned, nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), 3, 2), ErrPostNotFound)
	})
}
