package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/service"
)

var (
	genLength    int
	genCount     int
	genNoSymbols bool
	genNoNumbers bool
)

func init() {
	generateCmd.Flags().IntVarP(&genLength, "length", "l", 16, "password length")
	generateCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of passwords to generate")
	generateCmd.Flags().BoolVar(&genNoSymbols, "no-symbols", false, "exclude symbols")
	generateCmd.Flags().BoolVar(&genNoNumbers, "no-numbers", false, "exclude digits")
}

var strengthLabels = [crypto.MaxStrength + 1]string{"very weak", "weak", "fair", "strong", "very strong"}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate random passwords with their strength score",
	RunE: func(cmd *cobra.Command, args []string) error {
		symbols, numbers := !genNoSymbols, !genNoNumbers
		resp, err := service.NewGeneratorService().Generate(cmd.Context(), model.GenerateRequest{
			Length:  genLength,
			Count:   genCount,
			Symbols: &symbols,
			Numbers: &numbers,
		})
		if err != nil {
			return fail("Generation failed", err)
		}

		for i, p := range resp.Passwords {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", p, strengthColor(resp.Strength[i]))
		}
		return nil
	},
}

func strengthColor(score int) string {
	label := fmt.Sprintf("[%d %s]", score, strengthLabels[score])
	switch {
	case score >= 3:
		return color.GreenString(label)
	case score == 2:
		return color.YellowString(label)
	default:
		return color.RedString(label)
	}
}
