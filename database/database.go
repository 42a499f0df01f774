package database

import (
	"churchops/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database, migrates the schema and seeds the platform
// admin and default plan. The returned handle is passed to everything that
// needs it; there is no package-level connection.
func Connect(dsn, adminEmail, adminPassword string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Plan{},
		&models.Tenant{},
		&models.PlatformAdmin{},
		&models.Person{},
		&models.TenantUser{},
		&models.PersonField{},
		&models.PersonFieldValue{},
		&models.Team{},
		&models.Skill{},
		&models.TeamMember{},
		&models.TeamMemberSkill{},
		&models.SkillIncompatibility{},
		&models.EventTemplate{},
		&models.TemplateSlot{},
		&models.Event{},
		&models.EventSlot{},
		&models.EventAssignment{},
	)
	if err != nil {
		return nil, err
	}

	if err := seedDefaultPlan(db, log); err != nil {
		return nil, err
	}
	if err := seedPlatformAdmin(db, adminEmail, adminPassword, log); err != nil {
		return nil, err
	}

	return db, nil
}

func seedDefaultPlan(db *gorm.DB, log *zap.Logger) error {
	var count int64
	db.Model(&models.Plan{}).Count(&count)
	if count > 0 {
		return nil
	}

	plan := models.Plan{
		Name:       "free",
		MaxMembers: 50,
		MaxTeams:   5,
		PriceCents: 0,
	}
	if result := db.Create(&plan); result.Error != nil {
		return result.Error
	}

	log.Info("default plan created", zap.String("name", plan.Name))
	return nil
}

func seedPlatformAdmin(db *gorm.DB, email, password string, log *zap.Logger) error {
	var count int64
	db.Model(&models.PlatformAdmin{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.PlatformAdmin{
		Email:              email,
		FullName:           "Platform Administrator",
		PasswordHash:       string(hashedPassword),
		MustChangePassword: true,
	}
	if result := db.Create(&admin); result.Error != nil {
		return result.Error
	}

	log.Info("platform admin created", zap.String("email", email))
	return nil
}
