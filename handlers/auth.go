package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"classroom-energy-api/ml"
	"classroom-energy-api/models"
	"classroom-energy-api/services"
)

type AuthHandler struct {
	db          *gorm.DB
	authService *services.AuthService
	mailer      services.Mailer
}

func NewAuthHandler(db *gorm.DB, authService *services.AuthService, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, mailer: mailer}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// Signup registers a new account. Admin signups stay pending until an
// existing admin approves them; everyone else gets an activation mail.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role != "admin" && role != "faculty" {
		role = "user"
	}

	var existing models.User
	err := h.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already registered"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}

	token := uuid.NewString()
	user := models.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            role,
		IsPendingAdmin:  role == "admin",
		ActivationToken: &token,
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	if user.IsPendingAdmin {
		c.JSON(http.StatusCreated, gin.H{
			"message": "Admin registration received. An existing admin must approve your account.",
		})
		return
	}

	if err := h.mailer.SendActivation(user.Email, user.Username, token); err != nil {
		log.Printf("Failed to send activation mail to %s: %v", user.Email, err)
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. Check your email for the activation link.",
	})
}

type loginRequest struct {
	Identity string `json:"identity" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login accepts the username or the email in the identity field.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.db.Where("username = ? OR email = ?", req.Identity, req.Identity).First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if user.IsPendingAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin account awaiting approval"})
		return
	}
	if !user.IsActiveAccount {
		c.JSON(http.StatusForbidden, gin.H{"error": "account not activated"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Activate consumes an activation token from the mail link.
func (h *AuthHandler) Activate(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	if err := h.db.Where("activation_token = ?", token).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid activation token"})
		return
	}

	user.IsActiveAccount = true
	user.ActivationToken = nil
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account activated. You can log in now."})
}

// VerifyToken lets the frontend check a stored token on load.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":  c.GetUint("userID"),
		"username": c.GetString("username"),
		"role":     c.GetString("role"),
	})
}

// ListUsers pages through all accounts, admin only.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	cursor, limit := paginationParams(c)

	var users []models.User
	query := h.db.Order("id ASC").Limit(limit + 1)
	if cursor > 0 {
		query = query.Where("id > ?", cursor)
	}
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	resp := CursorResponse{Data: users}
	if len(users) > limit {
		users = users[:limit]
		next := users[len(users)-1].ID
		resp.Data = users
		resp.NextCursor = &next
		resp.HasMore = true
	}
	c.JSON(http.StatusOK, resp)
}

// PendingAdmins lists admin signups awaiting approval.
func (h *AuthHandler) PendingAdmins(c *gin.Context) {
	var users []models.User
	if err := h.db.Where("is_pending_admin = ?", true).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": users})
}

// ApproveAdmin promotes a pending admin to a full, active admin account.
func (h *AuthHandler) ApproveAdmin(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if !user.IsPendingAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is not a pending admin"})
		return
	}

	user.IsPendingAdmin = false
	user.IsActiveAccount = true
	user.ActivationToken = nil
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve admin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin approved", "user_id": user.ID})
}

// ActivateManual lets an admin activate an account without the mail flow.
func (h *AuthHandler) ActivateManual(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	user.IsActiveAccount = true
	user.ActivationToken = nil
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account activated", "user_id": user.ID})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=user faculty admin"`
}

// CreateUser is the admin path for provisioning a single active account.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}

	user := models.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            req.Role,
		IsActiveAccount: true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already registered"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user_id": user.ID})
}

// BulkImportUsers provisions accounts from an uploaded CSV with the columns
// email, username, password and role. Bad rows are skipped and reported.
func (h *AuthHandler) BulkImportUsers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	defer file.Close()

	ds, err := ml.ReadCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse CSV"})
		return
	}
	if err := ds.RequireColumns("email", "username", "password", "role"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := 0
	var skipped []string
	for _, row := range ds.Rows {
		email := strings.TrimSpace(row["email"])
		username := strings.TrimSpace(row["username"])
		if email == "" || username == "" || row["password"] == "" {
			skipped = append(skipped, username)
			continue
		}

		role := row["role"]
		if role != "admin" && role != "faculty" {
			role = "user"
		}

		hash, err := h.authService.HashPassword(row["password"])
		if err != nil {
			skipped = append(skipped, username)
			continue
		}

		user := models.User{
			Username:        username,
			Email:           email,
			PasswordHash:    hash,
			Role:            role,
			IsActiveAccount: true,
		}
		if err := h.db.Create(&user).Error; err != nil {
			skipped = append(skipped, username)
			continue
		}
		created++
	}

	c.JSON(http.StatusOK, gin.H{
		"created": created,
		"skipped": skipped,
	})
}

type updateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    *bool  `json:"is_active"`
	NewPassword string `json:"new_password"`
}

var (
	errOwnRoleChange = errors.New("you cannot change your own role")
	errOwnDeactivate = errors.New("you cannot deactivate your own account")
	errInvalidRole   = errors.New("invalid role")
)

// applyUserUpdate mutates the user per the request and describes each change.
// Empty request fields mean "leave unchanged". Username/email uniqueness is
// the caller's concern; this covers the field-level rules.
func applyUserUpdate(user *models.User, req updateUserRequest, isSelf bool) ([]string, error) {
	var changes []string

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		changes = append(changes, fmt.Sprintf("username %s -> %s", user.Username, username))
		user.Username = username
	}

	if email := strings.TrimSpace(req.Email); email != "" && email != user.Email {
		changes = append(changes, "email updated")
		user.Email = email
	}

	if role := strings.TrimSpace(req.Role); role != "" && role != user.Role {
		if isSelf {
			return nil, errOwnRoleChange
		}
		if role != "admin" && role != "faculty" && role != "user" {
			return nil, errInvalidRole
		}
		changes = append(changes, fmt.Sprintf("role %s -> %s", user.Role, role))
		user.Role = role
		if role == "admin" {
			user.IsPendingAdmin = false
		}
	}

	if req.IsActive != nil && *req.IsActive != user.IsActiveAccount {
		if isSelf && !*req.IsActive {
			return nil, errOwnDeactivate
		}
		if *req.IsActive {
			changes = append(changes, "status active")
			user.ActivationToken = nil
		} else {
			changes = append(changes, "status inactive")
		}
		user.IsActiveAccount = *req.IsActive
	}

	return changes, nil
}

// UpdateUser lets an admin edit another account's profile, role, status or
// password. Self-edits cannot change role or deactivate the account.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		var count int64
		h.db.Model(&models.User{}).Where("username = ? AND id <> ?", username, user.ID).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
	}
	if email := strings.TrimSpace(req.Email); email != "" && email != user.Email {
		var count int64
		h.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
	}

	isSelf := c.GetUint("userID") == user.ID
	changes, err := applyUserUpdate(&user, req, isSelf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NewPassword != "" {
		if len(req.NewPassword) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
			return
		}
		hash, err := h.authService.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
			return
		}
		user.PasswordHash = hash
		changes = append(changes, "password reset")
	}

	if len(changes) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes detected"})
		return
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User updated",
		"changes": changes,
	})
}

// DeleteUser removes an account. The last admin cannot be deleted.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if user.Role == "admin" {
		var adminCount int64
		h.db.Model(&models.User{}).
			Where("role = ? AND is_pending_admin = ?", "admin", false).
			Count(&adminCount)
		if adminCount <= 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the last admin"})
			return
		}
	}

	// Faculty removals leave an audit trail for the other admins.
	if user.Role == "faculty" {
		notification := models.Notification{
			Type:       "user_deletion_alert",
			Message:    fmt.Sprintf("Admin %q deleted faculty member %s (%s)", c.GetString("username"), user.Username, user.Email),
			TargetRole: "admin",
			CreatedBy:  c.GetString("username"),
		}
		if err := h.db.Create(&notification).Error; err != nil {
			log.Printf("Failed to create deletion notification: %v", err)
		}
	}

	if err := h.db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
