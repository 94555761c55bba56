package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openwpan/hiltest/pkg/harness"
	"github.com/openwpan/hiltest/pkg/interactive"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch interactive mode",
	Long:  `Launches the interactive menu for picking and running suites.`,
	Run: func(_ *cobra.Command, _ []string) {
		runInteractive()
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive() {
	fmt.Println("hiltest - Interactive Mode")
	fmt.Println("==========================")
	fmt.Println()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "Run All Suites",
				Description: "Run every registered suite in order",
				Action: func() error {
					if err := interactiveRun(nil); err != nil {
						fmt.Printf("\nError: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "Run Suite",
				Description: "Pick one suite to run",
				Action: func() error {
					names := suiteNames()
					if len(names) == 0 {
						fmt.Println("\nNo suites registered.")
						interactive.PauseForEnter()
						return nil
					}

					selected, err := interactive.SelectOne("Which suite?", names)
					if err != nil {
						return nil
					}

					if !interactive.Confirm(fmt.Sprintf("Run %s against the claimed bench hardware?", selected)) {
						fmt.Println("Run canceled.")
						interactive.PauseForEnter()
						return nil
					}

					if err := interactiveRun([]string{selected}); err != nil {
						fmt.Printf("\nError: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "List Suites",
				Description: "Show registered suites and their tests",
				Action: func() error {
					listCmd.Run(listCmd, nil)
					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "Show Config",
				Description: "Display current environment configuration",
				Action: func() error {
					if err := showConfigCmd.RunE(showConfigCmd, nil); err != nil {
						fmt.Printf("\nError: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
		}

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Println("Goodbye!")
				return
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func interactiveRun(names []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	suites, err := resolveSuites(names)
	if err != nil {
		return err
	}

	report, err := runSuites(cfg, suites)
	if err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("run finished with failures")
	}

	fmt.Println("\nAll suites passed.")
	return nil
}

func suiteNames() []string {
	suites := harness.Suites()
	names := make([]string, 0, len(suites))
	for _, s := range suites {
		names = append(names, s.Name())
	}
	return names
}
