package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
)

// ErrFacilityNotFound is returned when a facility lookup misses.
var ErrFacilityNotFound = apperrors.New("FACILITY_NOT_FOUND", "Facility not found", 404)

const earthRadiusKM = 6371.0

// FacilityInput carries facility attributes for create and update.
type FacilityInput struct {
	Name          string
	Address       string
	Phone         string
	Email         string
	Hours         string
	Latitude      *float64
	Longitude     *float64
	AcceptedTypes string
	IsActive      *bool
}

// NearbyFacility pairs a facility with its distance from the query
// point.
type NearbyFacility struct {
	Facility   models.Facility `json:"facility"`
	DistanceKM float64         `json:"distance_km"`
}

// FacilityService manages public drop-off locations.
type FacilityService struct {
	db *gorm.DB
}

// NewFacilityService constructs a FacilityService.
func NewFacilityService(db *gorm.DB) (*FacilityService, error) {
	if db == nil {
		return nil, errors.New("facility service: db is required")
	}
	return &FacilityService{db: db}, nil
}

// List returns active facilities ordered by name.
func (s *FacilityService) List(ctx context.Context) ([]models.Facility, error) {
	ctx = ensureContext(ctx)

	var facilities []models.Facility
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&facilities).Error; err != nil {
		return nil, fmt.Errorf("facility service: list facilities: %w", err)
	}
	return facilities, nil
}

// Get loads a single facility.
func (s *FacilityService) Get(ctx context.Context, facilityID string) (*models.Facility, error) {
	ctx = ensureContext(ctx)

	var facility models.Facility
	if err := s.db.WithContext(ctx).First(&facility, "id = ?", facilityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("facility service: load facility: %w", err)
	}
	return &facility, nil
}

// Nearby returns active facilities within radiusKM of the given point,
// closest first. Facilities without coordinates are skipped.
func (s *FacilityService) Nearby(ctx context.Context, lat, lng, radiusKM float64) ([]NearbyFacility, error) {
	ctx = ensureContext(ctx)
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperrors.NewBadRequest("Invalid coordinates")
	}
	if radiusKM <= 0 {
		radiusKM = 25
	}

	var facilities []models.Facility
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", true).
		Find(&facilities).Error; err != nil {
		return nil, fmt.Errorf("facility service: load facilities: %w", err)
	}

	var nearby []NearbyFacility
	for _, facility := range facilities {
		distance := haversineKM(lat, lng, *facility.Latitude, *facility.Longitude)
		if distance <= radiusKM {
			nearby = append(nearby, NearbyFacility{Facility: facility, DistanceKM: distance})
		}
	}
	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKM < nearby[j].DistanceKM
	})
	return nearby, nil
}

// Create registers a new facility. Staff only.
func (s *FacilityService) Create(ctx context.Context, actor Actor, input FacilityInput) (*models.Facility, error) {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	address := strings.TrimSpace(input.Address)
	if name == "" || address == "" {
		return nil, apperrors.NewBadRequest("Facility name and address are required")
	}

	facility := models.Facility{
		Name:          name,
		Address:       address,
		Phone:         strings.TrimSpace(input.Phone),
		Email:         strings.TrimSpace(input.Email),
		Hours:         strings.TrimSpace(input.Hours),
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		AcceptedTypes: strings.TrimSpace(input.AcceptedTypes),
		IsActive:      true,
	}
	if input.IsActive != nil {
		facility.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Create(&facility).Error; err != nil {
		return nil, fmt.Errorf("facility service: create facility: %w", err)
	}
	return &facility, nil
}

// Update edits an existing facility. Staff only.
func (s *FacilityService) Update(ctx context.Context, actor Actor, facilityID string, input FacilityInput) (*models.Facility, error) {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	var facility models.Facility
	if err := s.db.WithContext(ctx).First(&facility, "id = ?", facilityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("facility service: load facility: %w", err)
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		updates["address"] = address
	}
	if input.Phone != "" {
		updates["phone"] = strings.TrimSpace(input.Phone)
	}
	if input.Email != "" {
		updates["email"] = strings.TrimSpace(input.Email)
	}
	if input.Hours != "" {
		updates["hours"] = strings.TrimSpace(input.Hours)
	}
	if input.Latitude != nil {
		updates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		updates["longitude"] = *input.Longitude
	}
	if input.AcceptedTypes != "" {
		updates["accepted_types"] = strings.TrimSpace(input.AcceptedTypes)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&facility).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("facility service: update facility: %w", err)
		}
	}
	return &facility, nil
}

// Delete removes a facility. Staff only.
func (s *FacilityService) Delete(ctx context.Context, actor Actor, facilityID string) error {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return apperrors.ErrForbidden
	}

	result := s.db.WithContext(ctx).Delete(&models.Facility{}, "id = ?", facilityID)
	if result.Error != nil {
		return fmt.Errorf("facility service: delete facility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFacilityNotFound
	}
	return nil
}

// haversineKM computes the great-circle distance between two points.
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
