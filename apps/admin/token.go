package main

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/prajyots60/myskill-agenda/apps/api/echo"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

// token signs a development JWT so the agenda API can be exercised
// without the platform's auth service.
func (cli *commandLine) token(viewerID, email string, role timeline.Role) error {
	now := cli.clock.Now()
	claims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   viewerID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(cli.conf.Server.JWTExpirationDelta).Unix(),
		},
		Email:     email,
		IsStudent: role == timeline.RoleStudent,
		IsCreator: role == timeline.RoleCreator,
	}
	signed, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Println(signed)
	fmt.Printf("expires %s\n", time.Unix(claims.ExpiresAt, 0).Format(time.RFC1123))
	return nil
}
