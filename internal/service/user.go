package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"gorm.io/gorm"
)

// UserService handles accounts and subscriptions
type UserService struct {
	db *gorm.DB
}

// Ensure UserService implements IUserService
var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new account
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	verr := NewValidationError()
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		verr.Add("email", "A user with that email already exists.")
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		verr.Add("username", "A user with that username already exists.")
	}
	if username == "me" {
		verr.Add("username", "This username is reserved.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fieldError("email", "A user with that email or username already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[UserService] registered user %s", user.ID)
	return user, nil
}

// GetUser loads a user by id
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ListUsers returns a page of users ordered by username
func (s *UserService) ListUsers(ctx context.Context, page types.PageRequest) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := db.Order("username").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SetPassword replaces the password after checking the current one
func (s *UserService) SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(user.PasswordHash, current) {
		return fieldError("current_password", "Invalid password.")
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Subscribe makes follower follow author and returns the author
func (s *UserService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID) (*models.User, error) {
	author, err := s.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if followerID == authorID {
		return nil, ErrSelfSubscription
	}

	db := s.db.WithContext(ctx)
	var count int64
	err = db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	if err := db.Create(&models.Follow{FollowerID: followerID, AuthorID: authorID}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return author, nil
}

// Unsubscribe removes a subscription. Removing a missing subscription is not an error.
func (s *UserService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	if _, err := s.GetUser(ctx, authorID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

// Subscriptions lists the authors userID follows together with their recipes.
// recipesLimit <= 0 returns every recipe.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page types.PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := db.Model(&models.User{}).
		Select("users.*").
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.id").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	results := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := renderSubscription(db, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *sub)
	}
	return results, total, nil
}

// RenderSubscription renders an author the viewer follows with up to
// recipesLimit of their newest recipes
func (s *UserService) RenderSubscription(ctx context.Context, author *models.User, recipesLimit int) (*types.SubscriptionResponse, error) {
	return renderSubscription(s.db.WithContext(ctx), author, recipesLimit)
}

func renderSubscription(db *gorm.DB, author *models.User, recipesLimit int) (*types.SubscriptionResponse, error) {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	q := db.Where("author_id = ?", author.ID).Order("created_at DESC")
	if recipesLimit > 0 {
		q = q.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	short := make([]types.RecipeShortResponse, 0, len(recipes))
	for i := range recipes {
		short = append(short, ToRecipeShort(&recipes[i]))
	}
	return &types.SubscriptionResponse{
		UserResponse: ToUserResponse(author, true),
		Recipes:      short,
		RecipesCount: count,
	}, nil
}

// SubscribedTo returns the subset of authorIDs that viewer follows
func (s *UserService) SubscribedTo(ctx context.Context, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return subscribedTo(s.db.WithContext(ctx), viewer, authorIDs)
}

// RenderUsers converts users into responses with is_subscribed for viewer
func (s *UserService) RenderUsers(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]types.UserResponse, error) {
	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := s.SubscribedTo(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}
	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

// Promote grants admin rights to the user with the given email
func (s *UserService) Promote(ctx context.Context, email string) (*models.User, error) {
	user, err := models.GetUserByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("is_admin", true).Error; err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	user.IsAdmin = true
	return user, nil
}

// IsAdmin reports whether the user has admin rights
func (s *UserService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

func subscribedTo(db *gorm.DB, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return result, nil
	}
	var follows []models.Follow
	err := db.Where("follower_id = ? AND author_id IN ?", *viewer, authorIDs).Find(&follows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	for _, f := range follows {
		result[f.AuthorID] = true
	}
	return result, nil
}

// ToUserResponse renders a user
func ToUserResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}
