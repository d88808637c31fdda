package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"probation_app_go/db"
	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/spf13/cobra"
)

var newUser services.NewUserInput
var newUserRole string

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account",
	Long: `Create a user account. The password is read from --password or,
when omitted, from the first line of standard input.

Example:
  probationctl create-user --username officer.lee --email lee@probation.gov \
    --first-name Dana --last-name Lee --role officer --badge PO-010`,
	RunE: runCreateUser,
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&newUser.Username, "username", "", "login name (required)")
	f.StringVar(&newUser.Email, "email", "", "email address (required)")
	f.StringVar(&newUser.Password, "password", "", "password; read from stdin when empty")
	f.StringVar(&newUser.FirstName, "first-name", "", "first name")
	f.StringVar(&newUser.LastName, "last-name", "", "last name")
	f.StringVar(&newUserRole, "role", string(models.RoleOfficer), "admin, officer, staff or judge")
	f.StringVar(&newUser.Department, "department", "", "department")
	f.StringVar(&newUser.BadgeNumber, "badge", "", "officer badge number")
	f.StringVar(&newUser.Phone, "phone", "", "phone number")
	f.StringVar(&newUser.CourtJurisdiction, "jurisdiction", "", "court jurisdiction for judges")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	if newUser.Password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		newUser.Password = strings.TrimRight(line, "\r\n")
	}
	newUser.Role = models.Role(strings.ToLower(newUserRole))

	user, err := services.CreateUser(db.DB, newUser)
	if err != nil {
		if verr, ok := services.AsValidation(err); ok {
			for field, msg := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
			}
			return fmt.Errorf("user not created")
		}
		return err
	}

	fmt.Printf("Created %s %s (%s)\n", user.Role.Label(), user.Username, user.ID)
	return nil
}

var deactivateOfficerCmd = &cobra.Command{
	Use:   "deactivate-officer USERNAME",
	Short: "Remove an officer from the assignment pool",
	Long: `Remove an officer from the assignment pool. The account can still sign in
and keeps its current clients; new assignments are refused.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeactivateOfficer,
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user USERNAME",
	Short: "Delete a user account",
	Long: `Delete a user account with its sessions, notifications and messages.
Officers who still own clients, cases or appointments are refused until
those records are reassigned.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleteUser,
}

func runDeactivateOfficer(cmd *cobra.Command, args []string) error {
	user, err := services.GetUserByUsername(db.DB, args[0])
	if err != nil {
		return err
	}
	if err := services.DeactivateOfficer(db.DB, user.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deactivated officer %s\n", user.Username)
	return nil
}

func runDeleteUser(cmd *cobra.Command, args []string) error {
	user, err := services.GetUserByUsername(db.DB, args[0])
	if err != nil {
		return err
	}
	if err := services.DeleteUser(db.DB, user.ID); err != nil {
		if verr, ok := services.AsValidation(err); ok {
			for field, msg := range verr.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", field, msg)
			}
			return fmt.Errorf("user not deleted")
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", user.Role.Label(), user.Username)
	return nil
}
