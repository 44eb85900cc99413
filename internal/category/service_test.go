package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"dzgamezone-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]*Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*Category, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*Category), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, c *Category) (*Category, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, changes Changes) (*Category, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	args := m.Called(ctx, parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *service {
	return &service{repo: repo, now: func() time.Time { return fixedNow }}
}

// --- Tests ---

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolvesParents", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		consoles := &Category{ID: "c1", Name: "Consoles", Slug: "consoles"}
		ps5 := &Category{ID: "c2", Name: "PS5", Slug: "ps5", ParentID: "c1"}
		xbox := &Category{ID: "c3", Name: "Xbox", Slug: "xbox", ParentID: "c1"}

		repo.On("List", ctx).Return([]*Category{consoles, ps5, xbox}, nil)
		repo.On("GetByIDs", ctx, []string{"c1"}).
			Return(map[string]*Category{"c1": {ID: "c1", Name: "Consoles", Slug: "consoles"}}, nil)

		res, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, res, 3)
		assert.Nil(t, res[0].Parent)
		require.NotNil(t, res[1].Parent)
		assert.Equal(t, "Consoles", res[1].Parent.Name)
		assert.Equal(t, "Consoles", res[2].Parent.Name)
		repo.AssertExpectations(t)
	})

	t.Run("NoParentsSkipsLookup", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("List", ctx).Return([]*Category{{ID: "c1", Name: "Consoles"}}, nil)

		res, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, res, 1)
		repo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("List", ctx).Return(nil, errors.New("db down"))

		_, err := svc.List(ctx)
		assert.Error(t, err)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("GetByID", ctx, "missing").Return(nil, ErrCategoryNotFound)

		_, err := svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("WithParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("GetByID", ctx, "c2").Return(&Category{ID: "c2", Name: "PS5", ParentID: "c1"}, nil)
		repo.On("GetByIDs", ctx, []string{"c1"}).
			Return(map[string]*Category{"c1": {ID: "c1", Name: "Consoles"}}, nil)

		res, err := svc.Get(ctx, "c2")
		require.NoError(t, err)
		require.NotNil(t, res.Parent)
		assert.Equal(t, "c1", res.Parent.ID)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("DerivesSlug", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		expected := &Category{
			Name:        "Jeux Vidéo",
			Slug:        "jeux-vido",
			Description: "Tous les jeux",
			CreatedAt:   fixedNow,
		}
		repo.On("Create", ctx, expected).Return(&Category{ID: "c1", Name: "Jeux Vidéo", Slug: "jeux-vido"}, nil)

		res, err := svc.Create(ctx, CreateInput{Name: "  Jeux Vidéo ", Description: "Tous les jeux"})
		require.NoError(t, err)
		assert.Equal(t, "c1", res.ID)
		assert.Equal(t, "jeux-vido", res.Slug)
		repo.AssertExpectations(t)
	})

	t.Run("NameRequired", func(t *testing.T) {
		svc := newTestService(new(MockRepository))
		_, err := svc.Create(ctx, CreateInput{Name: "   "})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("NameWithoutSlugCharacters", func(t *testing.T) {
		svc := newTestService(new(MockRepository))
		_, err := svc.Create(ctx, CreateInput{Name: "!!!"})
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("UnknownParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("GetByID", ctx, "ghost").Return(nil, ErrCategoryNotFound)

		_, err := svc.Create(ctx, CreateInput{Name: "PS5", Parent: "ghost"})
		assert.ErrorIs(t, err, ErrParentNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("Create", ctx, mock.Anything).Return(nil, ErrCategoryExists)

		_, err := svc.Create(ctx, CreateInput{Name: "Consoles"})
		assert.ErrorIs(t, err, ErrCategoryExists)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("RenameRederivesSlug", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		name := "Retro Gaming"
		slug := "retro-gaming"
		repo.On("GetByID", ctx, "c1").Return(&Category{ID: "c1", Name: "Retro"}, nil)
		repo.On("Update", ctx, "c1", Changes{Name: &name, Slug: &slug}).
			Return(&Category{ID: "c1", Name: name, Slug: slug}, nil)

		res, err := svc.Update(ctx, "c1", UpdateInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "retro-gaming", res.Slug)
		repo.AssertExpectations(t)
	})

	t.Run("ClearParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		empty := ""
		repo.On("GetByID", ctx, "c2").Return(&Category{ID: "c2", ParentID: "c1"}, nil)
		repo.On("Update", ctx, "c2", Changes{ParentID: &empty}).Return(&Category{ID: "c2"}, nil)

		res, err := svc.Update(ctx, "c2", UpdateInput{Parent: &empty})
		require.NoError(t, err)
		assert.Empty(t, res.ParentID)
	})

	t.Run("SelfParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		self := "c1"
		repo.On("GetByID", ctx, "c1").Return(&Category{ID: "c1"}, nil)

		_, err := svc.Update(ctx, "c1", UpdateInput{Parent: &self})
		assert.ErrorIs(t, err, ErrParentCycle)
	})

	t.Run("DescendantAsParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		grandchild := "c3"
		repo.On("GetByID", ctx, "c1").Return(&Category{ID: "c1"}, nil)
		repo.On("GetByID", ctx, "c3").Return(&Category{ID: "c3", ParentID: "c2"}, nil)
		repo.On("GetByID", ctx, "c2").Return(&Category{ID: "c2", ParentID: "c1"}, nil)

		_, err := svc.Update(ctx, "c1", UpdateInput{Parent: &grandchild})
		assert.ErrorIs(t, err, ErrParentCycle)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingParent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		ghost := "ghost"
		repo.On("GetByID", ctx, "c1").Return(&Category{ID: "c1"}, nil)
		repo.On("GetByID", ctx, "ghost").Return(nil, ErrCategoryNotFound)

		_, err := svc.Update(ctx, "c1", UpdateInput{Parent: &ghost})
		assert.ErrorIs(t, err, ErrParentNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("GetByID", ctx, "nope").Return(nil, ErrCategoryNotFound)

		_, err := svc.Update(ctx, "nope", UpdateInput{})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("CascadesToAllDescendants", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("GetByID", ctx, "root").Return(&Category{ID: "root"}, nil)
		repo.On("ListChildIDs", ctx, []string{"root"}).Return([]string{"a", "b"}, nil)
		repo.On("ListChildIDs", ctx, []string{"a", "b"}).Return([]string{"a1"}, nil)
		repo.On("ListChildIDs", ctx, []string{"a1"}).Return([]string{}, nil)
		repo.On("DeleteMany", ctx, []string{"root", "a", "b", "a1"}).Return(int64(4), nil)

		n, err := svc.Delete(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		repo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("GetByID", ctx, "nope").Return(nil, ErrCategoryNotFound)

		_, err := svc.Delete(ctx, "nope")
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		repo.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})

	t.Run("ChildLookupFails", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)
		repo.On("GetByID", ctx, "root").Return(&Category{ID: "root"}, nil)
		repo.On("ListChildIDs", ctx, []string{"root"}).Return(nil, errors.New("timeout"))

		_, err := svc.Delete(ctx, "root")
		assert.Error(t, err)
		repo.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})
}
