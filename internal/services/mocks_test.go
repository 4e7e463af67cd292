package services_test

import (
	"mime/multipart"

	"arenda/internal/models"
	"arenda/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockListingRepository is a mock implementation of repositories.ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Search(filters repositories.SearchFilters) ([]models.Listing, error) {
	args := m.Called(filters)
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingRepository) Recent(limit int) ([]models.Listing, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListByOwner(ownerID uint) ([]models.Listing, error) {
	args := m.Called(ownerID)
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByID(id uint) (*models.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) Create(listing *models.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepository) Deactivate(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(id uint) (*models.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

// MockFileStore is a mock implementation of services.FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(files []*multipart.FileHeader) ([]string, error) {
	args := m.Called(files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFileStore) Remove(names []string) {
	m.Called(names)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishListingEvent(event map[string]interface{}) error {
	args := m.Called(event)
	return args.Error(0)
}
