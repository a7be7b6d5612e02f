package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"task-manager/backend/models"
	"task-manager/backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	usersCollection *mongo.Collection
	tasksCollection *mongo.Collection
}

func NewUserService(usersCollection, tasksCollection *mongo.Collection) *UserService {
	return &UserService{
		usersCollection: usersCollection,
		tasksCollection: tasksCollection,
	}
}

type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ProfileImageURL  string `json:"profileImageUrl"`
	AdminInviteToken string `json:"adminInviteToken"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser creates an account. The role is employee unless the request
// carries the configured admin invite token.
func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	var existing models.User
	if err := s.usersCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&existing); err == nil {
		return nil, "", ErrEmailTaken
	}

	role := models.RoleEmployee
	inviteToken := os.Getenv("ADMIN_INVITE_TOKEN")
	if req.AdminInviteToken != "" && req.AdminInviteToken == inviteToken {
		role = models.RoleAdmin
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:              primitive.NewObjectID(),
		Name:            req.Name,
		Email:           req.Email,
		Password:        hashedPassword,
		Role:            role,
		ProfileImageURL: req.ProfileImageURL,
		CreatedAt:       time.Now(),
	}

	if _, err := s.usersCollection.InsertOne(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to save user: %v", err)
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	return user, token, nil
}

func (s *UserService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := utils.CheckPassword(user.Password, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	return &user, token, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}
	return &user, nil
}

// UpdateProfile applies present, non-empty fields and returns a fresh token
// so a changed role or id claim never outlives the stored record.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req UpdateProfileRequest) (*models.User, string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, "", err
		}
		user.Password = hashedPassword
	}

	if _, err := s.usersCollection.ReplaceOne(ctx, bson.M{"_id": userID}, user); err != nil {
		return nil, "", fmt.Errorf("failed to update user: %v", err)
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	return user, token, nil
}

// GetUsers lists employee accounts with their per-status assignment counts.
func (s *UserService) GetUsers(ctx context.Context) ([]models.UserWithTaskCounts, error) {
	cursor, err := s.usersCollection.Find(ctx, bson.M{"role": models.RoleEmployee})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	result := make([]models.UserWithTaskCounts, 0, len(users))
	for _, user := range users {
		entry := models.UserWithTaskCounts{User: user}
		for _, status := range models.TaskStatuses {
			count, err := s.tasksCollection.CountDocuments(ctx, bson.M{"assignedTo": user.ID, "status": status})
			if err != nil {
				return nil, fmt.Errorf("failed to count tasks for user %s: %v", user.ID.Hex(), err)
			}
			switch status {
			case models.StatusPending:
				entry.PendingTasks = count
			case models.StatusInProgress:
				entry.InProgressTasks = count
			case models.StatusCompleted:
				entry.CompletedTasks = count
			}
		}
		result = append(result, entry)
	}

	return result, nil
}
