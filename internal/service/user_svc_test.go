package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
)

func setupUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SysUser{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return NewUserService(repository.NewUserRepository(db)), db
}

func seedUser(t *testing.T, db *gorm.DB, username, password string, status int) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err := db.Create(&model.SysUser{
		Username: username,
		Password: string(hash),
		Role:     model.UserRoleOperator,
		Status:   status,
	}).Error; err != nil {
		t.Fatal(err)
	}
	// Status 带 default 标签，零值在 Create 时会被 GORM 跳过，这里显式落库
	if err := db.Model(&model.SysUser{}).Where("username = ?", username).Update("status", status).Error; err != nil {
		t.Fatal(err)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, db := setupUserService(t)
	seedUser(t, db, "alice", "password-123", model.UserStatusActive)

	resp, err := svc.Login(context.Background(), &dto.LoginReq{
		Username: "alice",
		Password: "password-123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应返回 token 对")
	}
	if resp.User.Username != "alice" {
		t.Errorf("用户名 = %s", resp.User.Username)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, db := setupUserService(t)
	seedUser(t, db, "alice", "password-123", model.UserStatusActive)

	_, err := svc.Login(context.Background(), &dto.LoginReq{
		Username: "alice",
		Password: "wrong",
	})
	if err != ErrInvalidCredentials {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	svc, db := setupUserService(t)
	seedUser(t, db, "bob", "password-123", model.UserStatusDisabled)

	_, err := svc.Login(context.Background(), &dto.LoginReq{
		Username: "bob",
		Password: "password-123",
	})
	if err != ErrUserDisabled {
		t.Errorf("err = %v, want ErrUserDisabled", err)
	}
}

func TestCreateUserRejectsDuplicate(t *testing.T) {
	svc, db := setupUserService(t)
	seedUser(t, db, "alice", "password-123", model.UserStatusActive)

	_, err := svc.CreateUser(context.Background(), &dto.RegisterReq{
		Username: "alice",
		Password: "another-pass",
	})
	if err != ErrUsernameTaken {
		t.Errorf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, db := setupUserService(t)

	resp, err := svc.CreateUser(context.Background(), &dto.RegisterReq{
		Username: "carol",
		Password: "password-456",
	})
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	if resp.Role != string(model.UserRoleOperator) {
		t.Errorf("默认角色应为 operator, got %s", resp.Role)
	}

	var stored model.SysUser
	if err := db.Where("username = ?", "carol").First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Password == "password-456" {
		t.Error("密码不应明文存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password-456")); err != nil {
		t.Errorf("密码哈希校验失败: %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, db := setupUserService(t)
	seedUser(t, db, "alice", "password-123", model.UserStatusActive)

	login, err := svc.Login(context.Background(), &dto.LoginReq{
		Username: "alice",
		Password: "password-123",
	})
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenReq{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("刷新应返回新 access token")
	}

	// access token 不能当 refresh token 用
	if _, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenReq{
		RefreshToken: login.AccessToken,
	}); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
