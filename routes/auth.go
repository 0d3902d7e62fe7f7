package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Jatomit/UNLIMITED-TELECOM/auth"
)

// SetupAuthRoutes registers signup, login and logout.
func SetupAuthRoutes(g *gin.RouterGroup, d Deps) {
	g.GET("/signup/", auth.SignupForm)
	g.POST("/signup/", auth.Signup(d.DB))

	accounts := g.Group("/accounts")
	{
		accounts.POST("/login/", auth.Login(d.DB, d.Config))
		accounts.POST("/logout/", auth.Logout)
	}
}
