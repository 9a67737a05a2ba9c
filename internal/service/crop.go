package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cropcart/internal/model"
)

var ErrCropNotFound = errors.New("crop not found")

type CropService struct {
	db *sql.DB
}

func NewCropService(db *sql.DB) *CropService {
	return &CropService{db: db}
}

const cropColumns = `id, farmer_id, name, type, price, unit, availability, region_pincodes, image, latitude, longitude, created_at`

func scanCrop(row interface{ Scan(...any) error }) (model.Crop, error) {
	var c model.Crop
	var regions []byte
	err := row.Scan(&c.ID, &c.FarmerID, &c.Name, &c.Type, &c.Price, &c.Unit, &c.Availability,
		&regions, &c.Image, &c.Location.Latitude, &c.Location.Longitude, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if len(regions) > 0 {
		if err := json.Unmarshal(regions, &c.RegionPincodes); err != nil {
			return c, fmt.Errorf("decode region pincodes: %w", err)
		}
	}
	if c.RegionPincodes == nil {
		c.RegionPincodes = []string{}
	}
	return c, nil
}

func (s *CropService) queryCrops(ctx context.Context, query string, args ...any) ([]model.Crop, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query crops: %w", err)
	}
	defer rows.Close()

	crops := []model.Crop{}
	for rows.Next() {
		c, err := scanCrop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan crop: %w", err)
		}
		crops = append(crops, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return crops, nil
}

func (s *CropService) List(ctx context.Context) ([]model.Crop, error) {
	return s.queryCrops(ctx, `SELECT `+cropColumns+` FROM crops ORDER BY created_at DESC`)
}

func (s *CropService) ListByFarmer(ctx context.Context, farmerID string) ([]model.Crop, error) {
	return s.queryCrops(ctx, `SELECT `+cropColumns+` FROM crops WHERE farmer_id = $1 ORDER BY created_at DESC`, farmerID)
}

// ByIDs resolves crop IDs to crops. Unknown IDs are simply absent from the map.
func (s *CropService) ByIDs(ctx context.Context, ids []string) (map[string]model.Crop, error) {
	out := make(map[string]model.Crop, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode ids: %w", err)
	}
	crops, err := s.queryCrops(ctx,
		`SELECT `+cropColumns+` FROM crops WHERE id::text IN (SELECT jsonb_array_elements_text($1::jsonb))`,
		string(idsJSON))
	if err != nil {
		return nil, err
	}
	for _, c := range crops {
		out[c.ID] = c
	}
	return out, nil
}

func (s *CropService) Create(ctx context.Context, c model.Crop) (model.Crop, error) {
	regions, err := encodeRegions(c.RegionPincodes)
	if err != nil {
		return model.Crop{}, err
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO crops (farmer_id, name, type, price, unit, availability, region_pincodes, image, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10)
		RETURNING `+cropColumns,
		c.FarmerID, c.Name, c.Type, c.Price, c.Unit, c.Availability, regions, c.Image,
		c.Location.Latitude, c.Location.Longitude)
	created, err := scanCrop(row)
	if err != nil {
		return model.Crop{}, fmt.Errorf("insert crop: %w", err)
	}
	return created, nil
}

// Update edits a crop owned by c.FarmerID.
func (s *CropService) Update(ctx context.Context, c model.Crop) (model.Crop, error) {
	regions, err := encodeRegions(c.RegionPincodes)
	if err != nil {
		return model.Crop{}, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE crops SET name = $3, type = $4, price = $5, unit = $6, availability = $7,
			region_pincodes = $8::jsonb, image = $9, latitude = $10, longitude = $11
		WHERE id::text = $1 AND farmer_id::text = $2
		RETURNING `+cropColumns,
		c.ID, c.FarmerID, c.Name, c.Type, c.Price, c.Unit, c.Availability, regions, c.Image,
		c.Location.Latitude, c.Location.Longitude)
	updated, err := scanCrop(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Crop{}, ErrCropNotFound
		}
		return model.Crop{}, fmt.Errorf("update crop: %w", err)
	}
	return updated, nil
}

func (s *CropService) Delete(ctx context.Context, farmerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM crops WHERE id::text = $1 AND farmer_id::text = $2`, id, farmerID)
	if err != nil {
		return fmt.Errorf("delete crop: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrCropNotFound
	}
	return nil
}

func encodeRegions(regions []string) (string, error) {
	if regions == nil {
		regions = []string{}
	}
	b, err := json.Marshal(regions)
	if err != nil {
		return "", fmt.Errorf("encode region pincodes: %w", err)
	}
	return string(b), nil
}
