package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/repository"
)

var ErrCustomerNotFound = errors.New("customer profile not found")

type ProfileService struct {
	customerRepo repository.CustomerRepository
}

func NewProfileService(customerRepo repository.CustomerRepository) *ProfileService {
	return &ProfileService{customerRepo: customerRepo}
}

func (s *ProfileService) Get(ctx context.Context, id identity.Identity) (*model.Customer, error) {
	if err := requireCustomer(id); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, id.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// Update overwrites phone and address; blank values keep the current ones.
func (s *ProfileService) Update(ctx context.Context, id identity.Identity, phone, address string) (*model.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		customer.Phone = phone
	}
	if address = strings.TrimSpace(address); address != "" {
		customer.Address = address
	}
	if err := s.customerRepo.UpdateContact(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}
