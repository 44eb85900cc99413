package shipping

import (
	"context"
	"strconv"
	"strings"
	"time"

	"dzgamezone-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]*Wilaya, error)
	// Lookup resolves a path segment: digits select by numero, anything
	// else by exact region name.
	Lookup(ctx context.Context, idOrName string) (*Wilaya, error)
	Create(ctx context.Context, in CreateInput) (*Wilaya, error)
	Update(ctx context.Context, numero int, in UpdateInput) (*Wilaya, error)
	Delete(ctx context.Context, numero int) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) List(ctx context.Context) ([]*Wilaya, error) {
	return s.repo.List(ctx)
}

func (s *service) Lookup(ctx context.Context, idOrName string) (*Wilaya, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, ErrWilayaNotFound
	}
	if numero, err := strconv.Atoi(idOrName); err == nil {
		return s.repo.GetByNumero(ctx, numero)
	}

	// names are unique ignoring case, so the only candidate must match exactly
	w, err := s.repo.GetByName(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if w.Nom != idOrName {
		return nil, ErrWilayaNotFound
	}
	return w, nil
}

func validNumero(n int) bool {
	return n >= MinNumero && n <= MaxNumero
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Wilaya, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	nom := strings.TrimSpace(in.Nom)
	if in.Numero == nil || nom == "" || in.PrixDomicile == nil || in.PrixAgence == nil {
		return nil, ErrMissingFields
	}
	if !validNumero(*in.Numero) {
		return nil, ErrNumeroRange
	}
	if *in.PrixDomicile < 0 || *in.PrixAgence < 0 {
		return nil, ErrNegativePrice
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &Wilaya{
		Numero:       *in.Numero,
		Nom:          nom,
		PrixDomicile: *in.PrixDomicile,
		PrixAgence:   *in.PrixAgence,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		log.Warn("failed to create wilaya", zap.Int("numero", *in.Numero), zap.Error(err))
		return nil, err
	}

	log.Info("wilaya created", zap.Int("numero", created.Numero), zap.String("nom", created.Nom))
	return created, nil
}

func (s *service) Update(ctx context.Context, numero int, in UpdateInput) (*Wilaya, error) {
	if in.Nom != nil {
		nom := strings.TrimSpace(*in.Nom)
		if nom == "" {
			return nil, ErrNomRequired
		}
		in.Nom = &nom
	}
	if (in.PrixDomicile != nil && *in.PrixDomicile < 0) || (in.PrixAgence != nil && *in.PrixAgence < 0) {
		return nil, ErrNegativePrice
	}

	updated, err := s.repo.Update(ctx, numero, Changes{UpdateInput: in, UpdatedAt: s.now().UTC()})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("wilaya updated",
		zap.String("layer", "service"),
		zap.Int("numero", numero),
		zap.Int64("prix_domicile", updated.PrixDomicile),
		zap.Int64("prix_agence", updated.PrixAgence),
	)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, numero int) error {
	if err := s.repo.Delete(ctx, numero); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("wilaya deleted", zap.String("layer", "service"), zap.Int("numero", numero))
	return nil
}
