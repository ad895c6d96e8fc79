package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/pkg/jwt"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login y gestión de usuarios (solo admin, salvo Login).
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      *logger.Logger
	cost     int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, log: log.Named("auth"), cost: bcrypt.DefaultCost}
}

// WithBcryptCost cambia el costo de bcrypt (tests).
func (uc *AuthUseCase) WithBcryptCost(cost int) *AuthUseCase {
	uc.cost = cost
	return uc
}

// Login verifica usuario/password, genera JWT y retorna token + usuario.
// Usuario inexistente y password incorrecta devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("username", user.Username).Msg("password incorrecta")
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.StatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("login")
	return &dto.LoginResponse{
		Token: token,
		User:  ToUserResponse(user),
	}, nil
}

// Create alta de usuario: hashea password con bcrypt. Rol por defecto empleado.
func (uc *AuthUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: nombre de usuario requerido", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleEmpleado
	}
	if !entity.IsValidRole(role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, role)
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Status:       entity.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", role).Msg("usuario creado")
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update modifica usuario, password y/o rol; los campos vacíos no se tocan.
func (uc *AuthUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u := strings.TrimSpace(in.Username); u != "" && u != user.Username {
		other, err := uc.userRepo.GetByUsername(ctx, u)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, domain.ErrUsernameTaken
		}
		user.Username = u
	}
	if in.Password != "" {
		if len(in.Password) < minPasswordLen {
			return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if in.Role != "" {
		if !entity.IsValidRole(in.Role) {
			return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
		}
		user.Role = in.Role
	}
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List usuarios filtrando por estado (vacío = todos).
func (uc *AuthUseCase) List(ctx context.Context, status string) ([]dto.UserResponse, error) {
	if status != "" && status != entity.StatusActive && status != entity.StatusArchived {
		return nil, domain.ErrInvalidInput
	}
	users, err := uc.userRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out, nil
}

// Archive da de baja un usuario. Un admin no puede archivarse a sí mismo.
func (uc *AuthUseCase) Archive(ctx context.Context, id, reason, actorID string) (*dto.UserResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: motivo de baja requerido", domain.ErrInvalidInput)
	}
	if id == actorID {
		return nil, fmt.Errorf("%w: no se puede archivar el usuario en uso", domain.ErrConflict)
	}
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == entity.StatusArchived {
		return nil, fmt.Errorf("%w: el usuario ya está archivado", domain.ErrConflict)
	}
	user.Status = entity.StatusArchived
	user.ArchiveReason = reason
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", id).Str("reason", reason).Msg("usuario archivado")
	resp := ToUserResponse(user)
	return &resp, nil
}

// Restore reactiva un usuario archivado, opcionalmente con otro rol.
func (uc *AuthUseCase) Restore(ctx context.Context, id string, in dto.RestoreUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == entity.StatusActive {
		return nil, fmt.Errorf("%w: el usuario ya está activo", domain.ErrConflict)
	}
	if in.Role != "" {
		if !entity.IsValidRole(in.Role) {
			return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
		}
		user.Role = in.Role
	}
	user.Status = entity.StatusActive
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", id).Str("role", user.Role).Msg("usuario restaurado")
	resp := ToUserResponse(user)
	return &resp, nil
}

// EnsureAdmin crea el admin inicial si todavía no hay usuarios. Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	users, err := uc.userRepo.List(ctx, "")
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	if password == "" {
		return false, fmt.Errorf("%w: ADMIN_PASSWORD requerido para crear el primer usuario", domain.ErrInvalidInput)
	}
	if _, err := uc.Create(ctx, dto.CreateUserRequest{Username: username, Password: password, Role: entity.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *AuthUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// ToUserResponse convierte la entidad a DTO (sin hash).
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Role:          u.Role,
		Status:        u.Status,
		ArchiveReason: u.ArchiveReason,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
