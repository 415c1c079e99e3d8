package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartpos/internal/dto"
	"smartpos/internal/loyalty"
	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerService manages loyalty accounts and reward redemptions.
// Checkout-time accrual and discounts live in BillService; this service covers
// the standalone customer surface.
type CustomerService interface {
	Register(ctx context.Context, sellerID uuid.UUID, req dto.RegisterCustomerRequest) (*dto.CustomerResponse, error)
	// Get returns the account with its full ledger history.
	Get(ctx context.Context, sellerID, customerID uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, sellerID uuid.UUID) ([]dto.CustomerResponse, error)
	// RedeemReward spends points on a named reward. Strict: a balance short
	// of the request fails with loyalty.ErrInsufficientPoints.
	RedeemReward(ctx context.Context, sellerID, customerID uuid.UUID, req dto.RedeemRewardRequest) (*dto.CustomerResponse, error)
}

type customerService struct {
	customers repository.CustomerRepository
	points    repository.PointTransactionRepository
}

func NewCustomerService(customers repository.CustomerRepository, points repository.PointTransactionRepository) CustomerService {
	return &customerService{customers: customers, points: points}
}

func (s *customerService) Register(ctx context.Context, sellerID uuid.UUID, req dto.RegisterCustomerRequest) (*dto.CustomerResponse, error) {
	expire := time.Now().AddDate(1, 0, 0)
	c := &model.Customer{
		SellerID:         sellerID,
		Name:             req.Name,
		Phone:            req.Phone,
		Email:            req.Email,
		Points:           0,
		Tier:             string(loyalty.TierNormal),
		TotalSpent:       decimal.Zero,
		PointsExpireDate: &expire,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return customerToResponse(c, nil), nil
}

func (s *customerService) Get(ctx context.Context, sellerID, customerID uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.ownedCustomer(ctx, sellerID, customerID)
	if err != nil {
		return nil, err
	}
	history, err := s.points.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	// Reconciliation check: the stored balance must equal the ledger sum.
	// A mismatch is logged, never patched silently.
	if sum, serr := s.points.SumByCustomer(ctx, c.ID); serr == nil && sum != int64(c.Points) {
		log.Error().
			Str("customer_id", c.ID.String()).
			Int("balance", c.Points).
			Int64("ledger_sum", sum).
			Msg("point balance does not match ledger sum")
	}

	return customerToResponse(c, history), nil
}

func (s *customerService) List(ctx context.Context, sellerID uuid.UUID) ([]dto.CustomerResponse, error) {
	customers, err := s.customers.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, *customerToResponse(&customers[i], nil))
	}
	return out, nil
}

func (s *customerService) RedeemReward(ctx context.Context, sellerID, customerID uuid.UUID, req dto.RedeemRewardRequest) (*dto.CustomerResponse, error) {
	var c *model.Customer

	txErr := runTx(ctx, s.customers.DB(), func(tx *gorm.DB) error {
		locked, err := s.customers.FindByIDTx(ctx, tx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}
		if locked.SellerID != sellerID {
			return ErrCustomerNotFound
		}

		newBalance, err := loyalty.Redeem(locked.Points, req.Points)
		if err != nil {
			return err
		}

		entry := &model.PointTransaction{
			CustomerID:  locked.ID,
			Points:      -req.Points,
			Kind:        model.PointKindRedeem,
			Description: fmt.Sprintf("Redeemed reward: %s", req.Reward),
		}
		if cerr := s.points.CreateTx(ctx, tx, entry); cerr != nil {
			return cerr
		}

		locked.Points = newBalance
		locked.Tier = string(loyalty.TierFor(locked.Points))
		if serr := s.customers.SaveTx(ctx, tx, locked); serr != nil {
			return serr
		}
		c = locked
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return customerToResponse(c, nil), nil
}

func (s *customerService) ownedCustomer(ctx context.Context, sellerID, customerID uuid.UUID) (*model.Customer, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if c.SellerID != sellerID {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func customerToResponse(c *model.Customer, history []model.PointTransaction) *dto.CustomerResponse {
	resp := &dto.CustomerResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Points:     c.Points,
		Tier:       c.Tier,
		TotalSpent: c.TotalSpent,
	}
	if c.PointsExpireDate != nil {
		d := c.PointsExpireDate.Format(time.RFC3339)
		resp.PointsExpireDate = &d
	}
	if c.LastPurchase != nil {
		d := c.LastPurchase.Format(time.RFC3339)
		resp.LastPurchase = &d
	}
	for _, e := range history {
		resp.History = append(resp.History, dto.PointTransactionResponse{
			ID:          e.ID.String(),
			Points:      e.Points,
			Kind:        e.Kind,
			Description: e.Description,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
