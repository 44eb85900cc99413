package category

import (
	"context"
	"strings"
	"time"

	"dzgamezone-be/internal/apperr"
	"dzgamezone-be/internal/logger"
	"dzgamezone-be/internal/utils"

	"go.uber.org/zap"
)

// maxDepth bounds the ancestor walk so corrupt parent links cannot loop forever.
const maxDepth = 64

type Service interface {
	List(ctx context.Context) ([]*Category, error)
	Get(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, in CreateInput) (*Category, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Category, error)
	// Delete removes the category and all of its descendants and returns
	// how many records were deleted.
	Delete(ctx context.Context, id string) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	categories, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		return nil, err
	}

	if err := s.attachParents(ctx, categories); err != nil {
		log.Error("failed to resolve parents", zap.Error(err))
		return nil, err
	}

	log.Debug("List success", zap.Int("count", len(categories)))
	return categories, nil
}

func (s *service) Get(ctx context.Context, id string) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachParents(ctx, []*Category{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// attachParents resolves the parent of each category with a single lookup.
func (s *service) attachParents(ctx context.Context, categories []*Category) error {
	ids := make([]string, 0, len(categories))
	seen := make(map[string]struct{})
	for _, c := range categories {
		if c.ParentID == "" {
			continue
		}
		if _, ok := seen[c.ParentID]; ok {
			continue
		}
		seen[c.ParentID] = struct{}{}
		ids = append(ids, c.ParentID)
	}
	if len(ids) == 0 {
		return nil
	}

	parents, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if p, ok := parents[c.ParentID]; ok {
			parent := *p
			parent.Parent = nil
			c.Parent = &parent
		}
	}
	return nil
}

func normalizeName(name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrNameRequired
	}
	slug := utils.Slugify(name)
	if slug == "" {
		return "", "", ErrInvalidName
	}
	return name, slug, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	name, slug, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	parentID := strings.TrimSpace(in.Parent)
	if parentID != "" {
		if err := s.ensureParent(ctx, parentID); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.Create(ctx, &Category{
		Name:        name,
		Slug:        slug,
		Description: in.Description,
		ParentID:    parentID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		log.Warn("failed to create category", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	log.Info("category created", zap.String("category_id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("category_id", id),
	)

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var changes Changes
	if in.Name != nil {
		name, slug, err := normalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		changes.Name = &name
		changes.Slug = &slug
	}
	changes.Description = in.Description

	if in.Parent != nil {
		parentID := strings.TrimSpace(*in.Parent)
		if parentID != "" {
			if err := s.checkAncestry(ctx, id, parentID); err != nil {
				return nil, err
			}
		}
		changes.ParentID = &parentID
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		log.Warn("failed to update category", zap.Error(err))
		return nil, err
	}

	if err := s.attachParents(ctx, []*Category{updated}); err != nil {
		return nil, err
	}

	log.Info("category updated")
	return updated, nil
}

func (s *service) ensureParent(ctx context.Context, parentID string) error {
	_, err := s.repo.GetByID(ctx, parentID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return ErrParentNotFound
	}
	return err
}

// checkAncestry rejects a parent that is the category itself or one of its descendants.
func (s *service) checkAncestry(ctx context.Context, id, parentID string) error {
	current := parentID
	for depth := 0; current != "" && depth < maxDepth; depth++ {
		if current == id {
			return ErrParentCycle
		}
		c, err := s.repo.GetByID(ctx, current)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				if current == parentID {
					return ErrParentNotFound
				}
				return nil
			}
			return err
		}
		current = c.ParentID
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id string) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Delete"),
		zap.String("category_id", id),
	)

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return 0, err
	}

	ids, err := s.collectSubtree(ctx, id)
	if err != nil {
		log.Error("failed to collect descendants", zap.Error(err))
		return 0, err
	}

	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		log.Error("failed to delete categories", zap.Error(err))
		return 0, err
	}

	log.Info("category deleted", zap.Int64("deleted", deleted))
	return deleted, nil
}

// collectSubtree walks the hierarchy breadth first and returns id followed by
// every descendant.
func (s *service) collectSubtree(ctx context.Context, id string) ([]string, error) {
	visited := map[string]struct{}{id: {}}
	all := []string{id}
	frontier := []string{id}

	for len(frontier) > 0 {
		children, err := s.repo.ListChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, child := range children {
			if _, ok := visited[child]; ok {
				continue
			}
			visited[child] = struct{}{}
			all = append(all, child)
			next = append(next, child)
		}
		frontier = next
	}
	return all, nil
}
