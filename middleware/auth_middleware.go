package middleware

import (
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const actorKey = "actor"

// Protected verifies the bearer token and stores the caller's Actor in Locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		ErrorHandler:   jwtError,
		SuccessHandler: storeActor,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "code": "unauthorized", "message": "Missing or malformed JWT", "retryable": false})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "code": "unauthorized", "message": "Invalid or expired JWT", "retryable": false})
}

func storeActor(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, fiber.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, fiber.ErrUnauthorized)
	}
	actor, err := services.ActorFromClaims(claims)
	if err != nil {
		return jwtError(c, err)
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

// CurrentActor returns the Actor stored by Protected.
func CurrentActor(c *fiber.Ctx) (services.Actor, error) {
	actor, ok := c.Locals(actorKey).(services.Actor)
	if !ok {
		return services.Actor{}, &services.AuthenticationError{Message: "not authenticated"}
	}
	return actor, nil
}

// RoleRequired rejects callers whose role is not listed.
func RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := CurrentActor(c)
		if err != nil {
			return err
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return &services.AuthorizationError{Action: c.Method() + " " + c.Path()}
	}
}

func AdminRequired() fiber.Handler {
	return RoleRequired(models.RoleAdmin)
}
