package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cropcart/internal/handler/respond"
	"cropcart/internal/model"
	"cropcart/internal/mw"
	"cropcart/internal/service"
)

type cropRequest struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Price          float64        `json:"price"`
	Quantity       string         `json:"quantity"`
	Availability   string         `json:"availability"`
	RegionPincodes []string       `json:"region_pincodes"`
	Image          string         `json:"image"`
	Location       model.Location `json:"location"`
}

func (req cropRequest) validate() string {
	switch {
	case req.Name == "":
		return "name required"
	case req.Price <= 0:
		return "price must be positive"
	case req.Location.Latitude < -90 || req.Location.Latitude > 90:
		return "latitude out of range"
	case req.Location.Longitude < -180 || req.Location.Longitude > 180:
		return "longitude out of range"
	}
	return ""
}

func (req cropRequest) crop(farmerID string) model.Crop {
	return model.Crop{
		FarmerID:       farmerID,
		Name:           req.Name,
		Type:           req.Type,
		Price:          req.Price,
		Unit:           req.Quantity,
		Availability:   req.Availability,
		RegionPincodes: req.RegionPincodes,
		Image:          req.Image,
		Location:       req.Location,
	}
}

func ListCropsHandler(crops CropStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := crops.List(r.Context())
		if err != nil {
			respond.Internal(w, r, "list crops", err)
			return
		}

		if pin := r.URL.Query().Get("pincode"); pin != "" {
			filtered := make([]model.Crop, 0, len(list))
			for _, c := range list {
				if c.DeliversTo(pin) {
					filtered = append(filtered, c)
				}
			}
			list = filtered
		}

		respond.JSON(w, r, http.StatusOK, list)
	}
}

func FarmerCropsHandler(crops CropStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := crops.ListByFarmer(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			respond.Internal(w, r, "list farmer crops", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, list)
	}
}

func CreateCropHandler(crops CropStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cropRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid json")
			return
		}
		if msg := req.validate(); msg != "" {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, msg)
			return
		}

		created, err := crops.Create(r.Context(), req.crop(mw.UserID(r.Context())))
		if err != nil {
			respond.Internal(w, r, "create crop", err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, created)
	}
}

func UpdateCropHandler(crops CropStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cropRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid json")
			return
		}
		if msg := req.validate(); msg != "" {
			respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation, msg)
			return
		}

		c := req.crop(mw.UserID(r.Context()))
		c.ID = chi.URLParam(r, "id")

		updated, err := crops.Update(r.Context(), c)
		if err != nil {
			if errors.Is(err, service.ErrCropNotFound) {
				respond.Error(w, r, http.StatusNotFound, respond.CodeNotFound, "crop not found")
				return
			}
			respond.Internal(w, r, "update crop", err)
			return
		}
		respond.JSON(w, r, http.StatusOK, updated)
	}
}

func DeleteCropHandler(crops CropStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := crops.Delete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, service.ErrCropNotFound) {
				respond.Error(w, r, http.StatusNotFound, respond.CodeNotFound, "crop not found")
				return
			}
			respond.Internal(w, r, "delete crop", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
