package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/id"
	"github.com/tesserahq/chrona/schedule"
)

func (a *API) createConfig(ctx forge.Context, req *CreateConfigRequest) (*digest.ScheduleConfig, error) {
	projectID, err := id.ParseProjectID(req.ProjectID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid project ID: %v", err))
	}
	if req.Title == "" {
		return nil, forge.BadRequest("title is required")
	}
	if err := schedule.Validate(req.CronExpression); err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	cfg := &digest.ScheduleConfig{
		Entity:         chrona.NewEntity(),
		ID:             id.NewConfigID(),
		ProjectID:      projectID,
		Title:          req.Title,
		CronExpression: req.CronExpression,
		Timezone:       req.Timezone,
		Tags:           req.Tags,
		Kinds:          req.Kinds,
		Enabled:        enabled,
	}

	if createErr := a.store.CreateConfig(ctx.Context(), cfg); createErr != nil {
		return nil, fmt.Errorf("create config: %w", createErr)
	}

	return cfg, ctx.JSON(http.StatusCreated, cfg)
}

func (a *API) listConfigs(ctx forge.Context, req *ListConfigsRequest) ([]*digest.ScheduleConfig, error) {
	projectID, err := id.ParseProjectID(req.ProjectID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid project ID: %v", err))
	}

	configs, err := a.store.ListConfigsByProject(ctx.Context(), projectID)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}

	return configs, ctx.JSON(http.StatusOK, configs)
}

func (a *API) getConfig(ctx forge.Context, _ *GetConfigRequest) (*digest.ScheduleConfig, error) {
	configID, err := id.ParseConfigID(ctx.Param("configId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid config ID: %v", err))
	}

	cfg, err := a.store.GetConfig(ctx.Context(), configID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return cfg, ctx.JSON(http.StatusOK, cfg)
}

func (a *API) deleteConfig(ctx forge.Context, _ *DeleteConfigRequest) (*struct{}, error) {
	configID, err := id.ParseConfigID(ctx.Param("configId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid config ID: %v", err))
	}

	if delErr := a.store.DeleteConfig(ctx.Context(), configID); delErr != nil {
		return nil, mapStoreError(delErr)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

// mapStoreError converts chrona sentinel errors to forge HTTP errors.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, chrona.ErrConfigNotFound) ||
		errors.Is(err, chrona.ErrDigestNotFound) ||
		errors.Is(err, chrona.ErrEntryNotFound) ||
		errors.Is(err, chrona.ErrProjectNotFound)
}
