package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ResolveHandler answers GET /v1/resolve?lat=..&lon=.. with the country,
// region, city, and timezone offset containing the point.
func ResolveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			return errBadRequest(c, "lat must be a decimal degree value")
		}
		lon, err := strconv.ParseFloat(c.Query("lon"), 64)
		if err != nil {
			return errBadRequest(c, "lon must be a decimal degree value")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "coordinates out of range")
		}

		info, err := deps.Resolver.Resolve(c.Context(), lat, lon)
		if err != nil {
			return errInternal(c, "resolve failed")
		}
		return c.JSON(info)
	}
}

// StatusHandler answers GET /v1/status with dataset row counts and the
// last successful pipeline run.
func StatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := deps.Resolver.Status(c.Context())
		if err != nil {
			return errInternal(c, "status query failed")
		}
		return c.JSON(status)
	}
}
