package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService handles profiles, avatars and subscriptions
type UserService struct {
	db     *gorm.DB
	images ImageStore
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{db: db, images: images}
}

// List returns a page of users ordered by id; viewerID 0 means anonymous
func (s *UserService) List(ctx context.Context, viewerID uint, limit, offset int) ([]types.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := subscribedTo(ctx, s.db, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.User, len(users))
	for i := range users {
		out[i] = toUser(&users[i], subscribed[users[i].ID])
	}
	return out, total, nil
}

// Get returns one user as seen by viewerID
func (s *UserService) Get(ctx context.Context, viewerID, id uint) (*types.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	subscribed, err := subscribedTo(ctx, s.db, viewerID, []uint{id})
	if err != nil {
		return nil, err
	}
	out := toUser(&user, subscribed[id])
	return &out, nil
}

// SetAvatar stores a new avatar for userID and drops the previous one
func (s *UserService) SetAvatar(ctx context.Context, userID uint, dataURL string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return "", notFound(err, "user")
	}

	url, err := saveDataURL(ctx, s.images, "avatar", AvatarsFolder, dataURL)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("avatar", url).Error; err != nil {
		deleteQuietly(ctx, s.images, url)
		return "", err
	}
	deleteQuietly(ctx, s.images, user.Avatar)
	return url, nil
}

// DeleteAvatar clears the avatar of userID
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return notFound(err, "user")
	}
	if user.Avatar == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("avatar", "").Error; err != nil {
		return err
	}
	deleteQuietly(ctx, s.images, user.Avatar)
	return nil
}

// Subscribe makes userID follow authorID
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.Subscription, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	if userID == authorID {
		return nil, newValidationError("author", "you cannot subscribe to yourself")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newValidationError("author", "you are already subscribed to this user")
	}

	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("author", "you are already subscribed to this user")
		}
		return nil, err
	}

	logging.Ctx(ctx).Debug().Uint("user_id", userID).Uint("author_id", authorID).Msg("subscribed")
	return s.subscription(ctx, &author, recipesLimit)
}

// Unsubscribe removes the follow of userID on authorID
func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		return notFound(err, "user")
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newValidationError("author", "you are not subscribed to this user")
	}
	return nil
}

// Subscriptions returns a page of the authors userID follows
func (s *UserService) Subscriptions(ctx context.Context, userID uint, limit, offset, recipesLimit int) ([]types.Subscription, int64, error) {
	followed := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
			Where("subscriptions.user_id = ?", userID)
	}

	var total int64
	if err := followed().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := followed().Select("users.*").Order("subscriptions.id").
		Limit(limit).Offset(offset).Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	out := make([]types.Subscription, 0, len(authors))
	for i := range authors {
		sub, err := s.subscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *sub)
	}
	return out, total, nil
}

// subscription renders an author the viewer follows; recipesLimit <= 0 means all.
func (s *UserService) subscription(ctx context.Context, author *models.User, recipesLimit int) (*types.Subscription, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	q := db.Where("author_id = ?", author.ID).Order("pub_date DESC, id DESC")
	if recipesLimit > 0 {
		q = q.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}

	out := &types.Subscription{
		User:         toUser(author, true),
		Recipes:      make([]types.ShortRecipe, 0, len(recipes)),
		RecipesCount: count,
	}
	for i := range recipes {
		out.Recipes = append(out.Recipes, toShortRecipe(&recipes[i]))
	}
	return out, nil
}
