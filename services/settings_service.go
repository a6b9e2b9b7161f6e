// services/settings_service.go
package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jabezinu/foxriver-backend/models"
)

// SettingsService reads and writes the singleton system settings record. The
// engines load it fresh on every invocation so admin changes take effect on
// the next calculation.
type SettingsService struct {
	db *mongo.Database
}

func NewSettingsService(db *mongo.Database) *SettingsService {
	return &SettingsService{db: db}
}

// Load returns the settings record, creating it with defaults when absent.
func (ss *SettingsService) Load(ctx context.Context) (*models.SystemSettings, error) {
	var settings models.SystemSettings
	err := ss.db.Collection("system_settings").FindOne(ctx, bson.M{}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		settings = models.DefaultSettings()
		settings.ID = primitive.NewObjectID()
		if _, err := ss.db.Collection("system_settings").InsertOne(ctx, settings); err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update replaces the singleton record, preserving its identity.
func (ss *SettingsService) Update(ctx context.Context, settings *models.SystemSettings) error {
	current, err := ss.Load(ctx)
	if err != nil {
		return err
	}
	settings.ID = current.ID
	settings.UpdatedAt = time.Now()
	_, err = ss.db.Collection("system_settings").ReplaceOne(ctx, bson.M{"_id": current.ID}, settings)
	return err
}
