package config

import (
	"ProjectLiveness/pkg/handlerUtil"
	"ProjectLiveness/pkg/log"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func NewFiber(logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:               "Liveness Service",
			BodyLimit:             1 * 1024 * 1024,
			DisableKeepalive:      false,
			DisableStartupMessage: true,
			StrictRouting:         true,
			CaseSensitive:         true,
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				if fe, ok := err.(*fiber.Error); ok {
					logger.WithFields(log.Fields{
						"path":   c.Path(),
						"status": fe.Code,
						"error":  fe.Message,
					}).Debug("Fiber error")
					return c.Status(fe.Code).JSON(handlerUtil.ErrorResponse{Error: fe.Message})
				}
				return handlerUtil.New(logger).Handle(c, c.Get("X-Request-ID"), err, c.Path(), "unhandled")
			},
		})

	return app
}
