package services

import (
	"errors"
	"fmt"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PackageService manages the purchasable package catalog. Packages are never
// hard-deleted: rows referenced by transactions stay around with
// is_active=false so settled history keeps resolving.
type PackageService struct {
	store PackageStore
}

func NewPackageService(store PackageStore) *PackageService {
	return &PackageService{store: store}
}

func (s *PackageService) Create(name string, messageCount int, price float64) (*models.MessagePackage, error) {
	if name == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if messageCount <= 0 {
		return nil, fmt.Errorf("message count must be positive")
	}
	if price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	pkg := &models.MessagePackage{
		Name:         name,
		MessageCount: messageCount,
		Price:        price,
		IsActive:     true,
	}
	if err := s.store.CreatePackage(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *PackageService) Get(id uuid.UUID) (*models.MessagePackage, error) {
	pkg, err := s.store.GetPackage(id)
	if err != nil {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

func (s *PackageService) ListActive() ([]models.MessagePackage, error) {
	return s.store.ListActivePackages()
}

// ListAll includes inactive packages and backs the admin export path.
func (s *PackageService) ListAll() ([]models.MessagePackage, error) {
	return s.store.ListAllPackages()
}

func (s *PackageService) Update(id uuid.UUID, name string, messageCount *int, price *float64, isActive *bool) (*models.MessagePackage, error) {
	pkg, err := s.store.GetPackage(id)
	if err != nil {
		return nil, ErrPackageNotFound
	}
	if name != "" {
		pkg.Name = name
	}
	if messageCount != nil {
		if *messageCount <= 0 {
			return nil, fmt.Errorf("message count must be positive")
		}
		pkg.MessageCount = *messageCount
	}
	if price != nil {
		if *price < 0 {
			return nil, fmt.Errorf("price cannot be negative")
		}
		pkg.Price = *price
	}
	if isActive != nil {
		pkg.IsActive = *isActive
	}
	if err := s.store.UpdatePackage(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *PackageService) Deactivate(id uuid.UUID) error {
	if err := s.store.DeactivatePackage(id); err != nil {
		return ErrPackageNotFound
	}
	return nil
}

// DefaultPackageStore implements PackageStore on top of gorm.
type DefaultPackageStore struct {
	db *gorm.DB
}

func NewPackageStore(db *gorm.DB) PackageStore {
	return &DefaultPackageStore{db: db}
}

func (s *DefaultPackageStore) CreatePackage(pkg *models.MessagePackage) error {
	return s.db.Create(pkg).Error
}

func (s *DefaultPackageStore) GetPackage(id uuid.UUID) (*models.MessagePackage, error) {
	var pkg models.MessagePackage
	if err := s.db.First(&pkg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *DefaultPackageStore) ListActivePackages() ([]models.MessagePackage, error) {
	var pkgs []models.MessagePackage
	if err := s.db.Where("is_active = ?", true).Order("price asc").Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (s *DefaultPackageStore) ListAllPackages() ([]models.MessagePackage, error) {
	var pkgs []models.MessagePackage
	if err := s.db.Order("created_at desc").Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (s *DefaultPackageStore) UpdatePackage(pkg *models.MessagePackage) error {
	return s.db.Save(pkg).Error
}

func (s *DefaultPackageStore) DeactivatePackage(id uuid.UUID) error {
	result := s.db.Model(&models.MessagePackage{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("package not found")
	}
	return nil
}
