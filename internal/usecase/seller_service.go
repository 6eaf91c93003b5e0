package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

// SellerInput changes only the non-nil fields on update
type SellerInput struct {
	Name     *string
	Phone    *string
	IsActive *bool
}

// SellerService handles seller business logic
type SellerService struct {
	sellerRepo domainRepo.SellerRepository
	logger     *zap.Logger
}

// NewSellerService creates a new seller service instance
func NewSellerService(sellerRepo domainRepo.SellerRepository, logger *zap.Logger) *SellerService {
	return &SellerService{
		sellerRepo: sellerRepo,
		logger:     logger,
	}
}

// CreateSeller creates an active seller unless IsActive says otherwise
func (s *SellerService) CreateSeller(ctx context.Context, input SellerInput) (*model.Seller, error) {
	seller := &model.Seller{IsActive: true}
	if input.Name == nil {
		return nil, domainerrors.NewValidationError("name", "name is required")
	}
	if err := applySellerInput(seller, input); err != nil {
		return nil, err
	}

	if err := s.sellerRepo.Create(ctx, seller); err != nil {
		return nil, err
	}

	s.logger.Info("Seller created", zap.Int64("seller_id", seller.ID))
	return seller, nil
}

func (s *SellerService) UpdateSeller(ctx context.Context, id int64, input SellerInput) (*model.Seller, error) {
	seller, err := s.GetSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applySellerInput(seller, input); err != nil {
		return nil, err
	}

	if err := s.sellerRepo.Update(ctx, seller); err != nil {
		return nil, err
	}
	return seller, nil
}

func (s *SellerService) GetSeller(ctx context.Context, id int64) (*model.Seller, error) {
	seller, err := s.sellerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, domainerrors.ErrSellerNotFound
	}
	return seller, nil
}

func (s *SellerService) ListSellers(ctx context.Context, activeOnly bool) ([]*model.Seller, error) {
	return s.sellerRepo.List(ctx, activeOnly)
}

// DeleteSeller refuses sellers that own orders, deleted orders included
func (s *SellerService) DeleteSeller(ctx context.Context, id int64) error {
	if _, err := s.GetSeller(ctx, id); err != nil {
		return err
	}

	count, err := s.sellerRepo.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domainerrors.ErrSellerHasOrders
	}

	if err := s.sellerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Seller deleted", zap.Int64("seller_id", id))
	return nil
}

func applySellerInput(seller *model.Seller, input SellerInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domainerrors.NewValidationError("name", "name is required")
		}
		seller.Name = name
	}
	if input.Phone != nil {
		seller.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.IsActive != nil {
		seller.IsActive = *input.IsActive
	}
	return nil
}
