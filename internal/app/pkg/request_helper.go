package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
)

// ParseStrictBody decodes the request body into out, rejecting unknown fields
// and trailing data. An empty body decodes as {}.
func ParseStrictBody(c *fiber.Ctx, out any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		body = []byte("{}")
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return errors.NewValidationError("Invalid request body: " + err.Error())
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.NewValidationError("Invalid request body: unexpected trailing data")
	}
	return nil
}

func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.NewInvalidDataError("Invalid " + name + " format")
	}
	return id, nil
}

func QueryBool(c *fiber.Ctx, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

type requestMetaKey struct{}

// WithRequestMeta stores HTTP context for audit rows written further down.
func WithRequestMeta(ctx context.Context, meta models.RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) models.RequestMeta {
	if ctx == nil {
		return models.RequestMeta{}
	}
	meta, _ := ctx.Value(requestMetaKey{}).(models.RequestMeta)
	return meta
}
