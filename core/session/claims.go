package session

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// Claims is the signed payload carried by the auth cookie. The edge gate
// verifies the signature instead of trusting the role cookie: the role cookie
// stays a routing hint, this is the check.
type Claims struct {
	jwt.StandardClaims
	Email     string    `json:"email,omitempty"`
	Role      user.Role `json:"role,omitempty"`
	IsStudent bool      `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher bool      `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
}

// NewClaims builds the claims for a session. The JWT ID carries the opaque
// session token so the authoritative store lookup stays possible.
func NewClaims(s Session) *Claims {
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   s.UserID,
			Id:        s.Token,
			IssuedAt:  s.CreatedAt.Unix(),
			ExpiresAt: s.ExpiresAt.Unix(),
		},
		Email:     s.Email,
		Role:      s.Role,
		IsStudent: s.Role == user.RoleStudent,
		IsTeacher: s.Role == user.RoleTeacher,
	}
}

// SignClaims generates a signed token string representing the Claims.
func SignClaims(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(core.Conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing claims")
	}
	return ss, nil
}

// VerifyClaims parses and verifies a signed token string.
func VerifyClaims(ss string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(ss, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return []byte(core.Conf.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
