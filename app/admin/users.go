// Package admin contains the /api/admin routes. They run behind the auth
// middleware and RequireAdmin.
package admin

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createUserBody struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
	Quota    *int64     `json:"quota"`
}

type quotaBody struct {
	Quota *int64 `json:"quota"`
}

type blockBody struct {
	Blocked *bool `json:"blocked"`
}

type roleBody struct {
	Role model.Role `json:"role"`
}

func ListUsers(c *gin.Context, d *internal.Deps) {
	users, err := d.Admin.ListUsers(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func CreateUser(c *gin.Context, d *internal.Deps) {
	var data createUserBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	user, err := d.Admin.CreateUser(c.Request.Context(), service.CreateUserInput{
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
		Role:     data.Role,
		Quota:    data.Quota,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": user,
	})
}

func SetQuota(c *gin.Context, d *internal.Deps) {
	var data quotaBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	if data.Quota == nil {
		respond.BadRequest(c, "Quota field is required")
		return
	}

	user, err := d.Admin.SetQuota(c.Request.Context(), c.Param("id"), *data.Quota)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func SetBlocked(c *gin.Context, d *internal.Deps) {
	actorID := c.MustGet("userID").(string)

	var data blockBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	if data.Blocked == nil {
		respond.BadRequest(c, "Blocked field is required")
		return
	}

	user, err := d.Admin.SetBlocked(c.Request.Context(), actorID, c.Param("id"), *data.Blocked)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func SetRole(c *gin.Context, d *internal.Deps) {
	actorID := c.MustGet("userID").(string)

	var data roleBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	user, err := d.Admin.SetRole(c.Request.Context(), actorID, c.Param("id"), data.Role)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func DeleteUser(c *gin.Context, d *internal.Deps) {
	actorID := c.MustGet("userID").(string)

	if err := d.Admin.DeleteUser(c.Request.Context(), actorID, c.Param("id")); err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted",
	})
}
