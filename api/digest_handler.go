package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/id"
)

func (a *API) listDigests(ctx forge.Context, req *ListDigestsRequest) ([]*digest.Digest, error) {
	configID, err := id.ParseConfigID(ctx.Param("configId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid config ID: %v", err))
	}

	digests, err := a.store.ListDigestsByConfig(ctx.Context(), configID)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}

	// Apply basic pagination.
	limit := defaultLimit(req.Limit)
	offset := req.Offset
	if offset > len(digests) {
		offset = len(digests)
	}
	end := offset + limit
	if end > len(digests) {
		end = len(digests)
	}
	page := digests[offset:end]

	return page, ctx.JSON(http.StatusOK, page)
}

func (a *API) getDigest(ctx forge.Context, _ *GetDigestRequest) (*digest.Digest, error) {
	digestID, err := id.ParseDigestID(ctx.Param("digestId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid digest ID: %v", err))
	}

	d, err := a.store.GetDigest(ctx.Context(), digestID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return d, ctx.JSON(http.StatusOK, d)
}

func (a *API) deleteDigest(ctx forge.Context, _ *DeleteDigestRequest) (*struct{}, error) {
	digestID, err := id.ParseDigestID(ctx.Param("digestId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid digest ID: %v", err))
	}

	if delErr := a.store.DeleteDigest(ctx.Context(), digestID); delErr != nil {
		return nil, mapStoreError(delErr)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
