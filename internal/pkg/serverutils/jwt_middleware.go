package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated caller, extracted from the JWT and stored
// in the request locals.
type Principal struct {
	UserId   int64
	Username string
}

// PrincipalLocal is the fiber locals key the middleware stores the
// Principal under. Exported for handlers that only get a websocket Conn.
const PrincipalLocal = "principal"

func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
		}

		userId, ok := claims["user_id"].(float64)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
		}
		username, ok := claims["username"].(string)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
		}

		ctx.Locals(PrincipalLocal, Principal{UserId: int64(userId), Username: username})
		return ctx.Next()
	}
}

func PrincipalFromCtx(ctx *fiber.Ctx) Principal {
	p, _ := ctx.Locals(PrincipalLocal).(Principal)
	return p
}
