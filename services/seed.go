package services

import (
	"fmt"
	"os"

	"probation_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SampleOfficerPassword = "probation123"
	SampleJudgePassword   = "judge123"
)

// SeedResult counts what a seeding run did
type SeedResult struct {
	Created []string
	Skipped []string
}

// SeedAdminFromEnv creates the first administrator from ADMIN_USERNAME,
// ADMIN_EMAIL and ADMIN_PASSWORD. It does nothing when the variables are
// unset or an administrator already exists.
func SeedAdminFromEnv(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		zap.L().Info("administrator already exists, skipping seed", zap.String("event", "SEED"))
		return nil
	}

	user, err := CreateUser(db, NewUserInput{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: os.Getenv("ADMIN_FIRST_NAME"),
		LastName:  os.Getenv("ADMIN_LAST_NAME"),
		Role:      models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to seed administrator: %w", err)
	}
	zap.L().Info("created administrator", zap.String("event", "SEED"), zap.String("username", user.Username))
	return nil
}

var sampleOfficers = []NewUserInput{
	{Username: "officer.johnson", Email: "johnson@probation.gov", FirstName: "Michael", LastName: "Johnson", Department: "Adult Probation", BadgeNumber: "PO-001", Phone: "(555) 010-1001"},
	{Username: "officer.smith", Email: "smith@probation.gov", FirstName: "Sarah", LastName: "Smith", Department: "Juvenile Probation", BadgeNumber: "PO-002", Phone: "(555) 010-1002"},
	{Username: "officer.garcia", Email: "garcia@probation.gov", FirstName: "Carlos", LastName: "Garcia", Department: "Drug Court", BadgeNumber: "PO-003", Phone: "(555) 010-1003"},
	{Username: "officer.williams", Email: "williams@probation.gov", FirstName: "Lisa", LastName: "Williams", Department: "Community Supervision", BadgeNumber: "PO-004", Phone: "(555) 010-1004"},
}

var sampleJudges = []struct {
	NewUserInput
	Code string
}{
	{NewUserInput{Username: "judge.wilson", Email: "wilson@courts.gov", FirstName: "Robert", LastName: "Wilson", CourtJurisdiction: "Circuit Court - District 1", Phone: "(555) 010-2001"}, "J-001"},
	{NewUserInput{Username: "judge.martinez", Email: "martinez@courts.gov", FirstName: "Maria", LastName: "Martinez", CourtJurisdiction: "Family Court", Phone: "(555) 010-2002"}, "J-002"},
	{NewUserInput{Username: "judge.thompson", Email: "thompson@courts.gov", FirstName: "James", LastName: "Thompson", CourtJurisdiction: "Drug Court", Phone: "(555) 010-2003"}, "J-003"},
}

func usernameTaken(db *gorm.DB, username string) (bool, error) {
	var n int64
	err := db.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&n).Error
	return n > 0, err
}

// SeedSampleOfficers creates the demo probation officers that do not exist yet
func SeedSampleOfficers(db *gorm.DB) (*SeedResult, error) {
	res := &SeedResult{}
	for _, in := range sampleOfficers {
		taken, err := usernameTaken(db, in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			res.Skipped = append(res.Skipped, in.Username)
			continue
		}
		in.Role = models.RoleOfficer
		in.Password = SampleOfficerPassword
		if _, err := CreateUser(db, in); err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", in.Username, err)
		}
		res.Created = append(res.Created, in.Username)
	}
	return res, nil
}

// SeedSampleJudges creates the demo judges, each with a judge profile
func SeedSampleJudges(db *gorm.DB) (*SeedResult, error) {
	res := &SeedResult{}
	for _, j := range sampleJudges {
		taken, err := usernameTaken(db, j.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			res.Skipped = append(res.Skipped, j.Username)
			continue
		}

		in := j.NewUserInput
		in.Role = models.RoleJudge
		in.Password = SampleJudgePassword
		err = db.Transaction(func(tx *gorm.DB) error {
			user, err := CreateUser(tx, in)
			if err != nil {
				return err
			}
			return tx.Create(&models.Judge{
				UserID:         user.ID,
				JudgeCode:      j.Code,
				Phone:          in.Phone,
				OfficeLocation: in.CourtJurisdiction,
				IsActive:       true,
			}).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", j.Username, err)
		}
		res.Created = append(res.Created, j.Username)
	}
	return res, nil
}
