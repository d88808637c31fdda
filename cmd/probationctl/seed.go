package main

import (
	"fmt"
	"strings"

	"probation_app_go/db"
	"probation_app_go/services"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo accounts",
}

var seedOfficersCmd = &cobra.Command{
	Use:   "officers",
	Short: "Create the sample probation officers",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := services.SeedSampleOfficers(db.DB)
		if err != nil {
			return err
		}
		printSeed("officers", res, services.SampleOfficerPassword)
		return nil
	},
}

var seedJudgesCmd = &cobra.Command{
	Use:   "judges",
	Short: "Create the sample judges with their profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := services.SeedSampleJudges(db.DB)
		if err != nil {
			return err
		}
		printSeed("judges", res, services.SampleJudgePassword)
		return nil
	},
}

func init() {
	seedCmd.AddCommand(seedOfficersCmd)
	seedCmd.AddCommand(seedJudgesCmd)
}

func printSeed(what string, res *services.SeedResult, password string) {
	fmt.Printf("Created %d %s", len(res.Created), what)
	if len(res.Created) > 0 {
		fmt.Printf(": %s (password %q)", strings.Join(res.Created, ", "), password)
	}
	fmt.Println()
	if len(res.Skipped) > 0 {
		fmt.Printf("Already present: %s\n", strings.Join(res.Skipped, ", "))
	}
}
