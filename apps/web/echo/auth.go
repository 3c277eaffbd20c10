package echoweb

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core/navigation"
	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/user"
)

const contextSessionKey = "session"

var signingMethod = jwt.SigningMethodHS256

// Claims are carried by the session cookie. The JWT id is the session id.
type Claims struct {
	jwt.StandardClaims
}

func (s *server) sessionTTL() time.Duration {
	if ttl := s.opts.Conf.Server.SessionTTL; ttl > 0 {
		return ttl
	}
	return 24 * time.Hour
}

// GenerateToken signs the cookie value of a session.
func GenerateToken(secret, issuer, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sessionID,
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	ss, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(secret, token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != signingMethod {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Id == "" {
		return nil, errors.New("token without session id")
	}
	return claims, nil
}

// sessionMiddleware attaches the browser session to the request, opening a new one when the cookie
// is missing, invalid or points to an expired session.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		conf := s.opts.Conf
		reqCtx := ctx.Request().Context()

		var store *session.Store
		var claims *Claims
		if cookie, err := ctx.Cookie(conf.Server.CookieName); err == nil {
			if claims, err = parseToken(conf.SecretKey, cookie.Value); err == nil {
				store, _ = s.opts.Sessions.Get(reqCtx, claims.Id)
			}
		}

		ttl := s.sessionTTL()
		if store == nil {
			store = s.opts.Sessions.Open(reqCtx)
			claims = nil
		}
		// refresh the cookie once half of its lifetime is gone
		if claims == nil || time.Until(time.Unix(claims.ExpiresAt, 0)) < ttl/2 {
			if err := s.setSessionCookie(ctx, store.ID(), ttl); err != nil {
				return err
			}
		}

		ctx.Set(contextSessionKey, store)
		return next(ctx)
	}
}

func (s *server) setSessionCookie(ctx echo.Context, sessionID string, ttl time.Duration) error {
	conf := s.opts.Conf
	token, err := GenerateToken(conf.SecretKey, conf.AppName, sessionID, ttl)
	if err != nil {
		return errors.Wrap(err, "generating session token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Server.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   !(conf.Debug || conf.TestMode),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *server) clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     s.opts.Conf.Server.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func getContextSession(ctx echo.Context) (*session.Store, error) {
	if store, ok := ctx.Get(contextSessionKey).(*session.Store); ok {
		return store, nil
	}
	return nil, errors.New("session not found in echo.Context")
}

// getContextUser returns the signed-in user or nil.
func getContextUser(ctx echo.Context) *user.User {
	store, err := getContextSession(ctx)
	if err != nil {
		return nil
	}
	if usr, ok := store.Identity(); ok {
		return &usr
	}
	return nil
}

// allowedTo guards the write actions of a view: usr must resolve k to the page it names.
func allowedTo(ctx echo.Context, k navigation.Key) (*session.Store, user.User, error) {
	store, err := getContextSession(ctx)
	if err != nil {
		return nil, user.User{}, err
	}
	usr, ok := store.Identity()
	if !ok || !navigation.Allowed(&usr, k) {
		return nil, user.User{}, errHttpForbidden
	}
	// acting on a view mounts it
	store.Navigate(k)
	return store, usr, nil
}
