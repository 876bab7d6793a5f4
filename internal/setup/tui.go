// Package setup runs the interactive configuration wizard.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/navarb/config"
)

// GeneratedConfigPath is where the wizard writes its result.
const GeneratedConfigPath = "config.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// answers collects the raw form values. Secrets are never asked for; they come from the environment.
type answers struct {
	network         string
	wallet          string
	pollInterval    string
	tradeAmount     string
	slippagePct     string
	dryRun          bool
	slackWebhookURL string
	notifyErrors    bool
	constituents    []constituentAnswers
}

type constituentAnswers struct {
	symbol       string
	token        string
	decimals     string
	valuation    string
	reference    string
	rateContract string
	rateMethod   string
}

func screen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("NAVARB CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and returns the path of the written config.
func RunTUI() (string, error) {
	a := answers{
		network:      "base",
		pollInterval: "2m",
		tradeAmount:  "5",
		slippagePct:  "0.3",
		dryRun:       true,
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("NAVARB CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("API keys and the private key are read from the environment and never saved.\n"))

	networkOptions := make([]huh.Option[string], 0)
	for _, n := range config.NetworkNames() {
		networkOptions = append(networkOptions, huh.NewOption(n, n))
	}

	fmt.Println(stepStyle.Render("STEP 1: NETWORK"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Network").
				Options(networkOptions...).
				Value(&a.network),
			huh.NewInput().
				Title("Wallet address").
				Description("Leave empty to derive it from PRIVATE_KEY").
				Value(&a.wallet).
				Validate(optionalAddress),
		),
	).Run()
	if err != nil {
		return "", err
	}

	for i := 1; ; i++ {
		screen(fmt.Sprintf("STEP 2: BASKET CONSTITUENT #%d", i))
		c, err := askConstituent()
		if err != nil {
			return "", err
		}
		a.constituents = append(a.constituents, c)

		more := false
		err = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Add another constituent?").Value(&more),
		)).Run()
		if err != nil {
			return "", err
		}
		if !more {
			break
		}
	}

	screen("STEP 3: TRADING")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll interval").
				Description("Duration string (e.g. 30s, 2m)").
				Value(&a.pollInterval).
				Validate(validateInterval),
			huh.NewInput().
				Title("Trade amount").
				Description("Index tokens per trade").
				Value(&a.tradeAmount).
				Validate(validatePositive),
			huh.NewInput().
				Title("Max slippage %").
				Description("e.g. 0.3").
				Value(&a.slippagePct).
				Validate(validatePercent),
			huh.NewConfirm().
				Title("Dry run?").
				Description("Quote and log trades without signing them").
				Value(&a.dryRun),
		),
	).Run()
	if err != nil {
		return "", err
	}

	screen("STEP 4: NOTIFICATIONS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Slack webhook URL").
				Description("Optional, SLACK_WEBHOOK_URL overrides it").
				Value(&a.slackWebhookURL),
			huh.NewConfirm().
				Title("Notify on cycle errors?").
				Value(&a.notifyErrors),
		),
	).Run()
	if err != nil {
		return "", err
	}

	screen("FINAL CONFIRMATION")
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(a.summary()))

	confirm := false
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return "", err
	}
	if !confirm {
		return "", errors.New("setup cancelled by user")
	}

	data, err := a.marshal()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(GeneratedConfigPath, data, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to save config file")
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s\nStarting bot...", GeneratedConfigPath)))
	time.Sleep(1500 * time.Millisecond)

	return GeneratedConfigPath, nil
}

func askConstituent() (constituentAnswers, error) {
	c := constituentAnswers{decimals: "18", valuation: "direct"}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Symbol").Value(&c.symbol).Validate(required),
			huh.NewInput().Title("Token address").Value(&c.token).Validate(requiredAddress),
			huh.NewInput().Title("Decimals").Value(&c.decimals).Validate(validateDecimals),
			huh.NewSelect[string]().
				Title("Valuation").
				Options(
					huh.NewOption("Direct price of a reference asset", "direct"),
					huh.NewOption("Reference price times an on-chain rate", "derived"),
				).
				Value(&c.valuation),
			huh.NewInput().
				Title("Reference symbol").
				Description("Market data symbol, e.g. BTC").
				Value(&c.reference).
				Validate(required),
		),
	).Run()
	if err != nil {
		return c, err
	}

	if c.valuation != "derived" {
		return c, nil
	}

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Rate contract").Value(&c.rateContract).Validate(requiredAddress),
			huh.NewInput().
				Title("Rate method").
				Description("No-argument uint256 view, e.g. stEthPerToken").
				Value(&c.rateMethod).
				Validate(required),
		),
	).Run()

	return c, err
}

func (a answers) summary() string {
	symbols := make([]string, 0, len(a.constituents))
	for _, c := range a.constituents {
		symbols = append(symbols, c.symbol)
	}
	return fmt.Sprintf(
		"Network: %s\nBasket: %s\nInterval: %s\nTrade amount: %s\nMax slippage: %s%%\nDry run: %t\n",
		a.network, strings.Join(symbols, ", "), a.pollInterval, a.tradeAmount, a.slippagePct, a.dryRun,
	)
}

// toConfig converts validated answers into the yaml config shape.
func (a answers) toConfig() (config.ConfigTmp, error) {
	interval, err := time.ParseDuration(a.pollInterval)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "poll interval")
	}

	tmp := config.ConfigTmp{
		Network:         a.network,
		WalletAddress:   strings.TrimSpace(a.wallet),
		SlackWebhookURL: strings.TrimSpace(a.slackWebhookURL),
		PollInterval:    interval,
		TradeAmount:     a.tradeAmount,
		MaxSlippagePct:  a.slippagePct,
		DryRun:          a.dryRun,
		NotifyErrors:    a.notifyErrors,
	}

	for _, c := range a.constituents {
		d, err := strconv.ParseUint(c.decimals, 10, 8)
		if err != nil {
			return config.ConfigTmp{}, errors.Wrapf(err, "decimals of %s", c.symbol)
		}
		decimals := uint8(d)

		item := config.ConstituentTmp{
			Symbol:   c.symbol,
			Token:    c.token,
			Decimals: &decimals,
			Valuation: config.ValuationTmp{
				Type:      c.valuation,
				Reference: c.reference,
			},
		}
		if c.valuation == "derived" {
			item.Valuation.RateContract = c.rateContract
			item.Valuation.RateMethod = c.rateMethod
		}
		tmp.Basket = append(tmp.Basket, item)
	}

	return tmp, nil
}

func (a answers) marshal() ([]byte, error) {
	tmp, err := a.toConfig()
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(tmp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate yaml")
	}
	return data, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func requiredAddress(s string) error {
	if !common.IsHexAddress(strings.TrimSpace(s)) {
		return errors.New("must be a 0x-prefixed 20 byte address")
	}
	return nil
}

func optionalAddress(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return requiredAddress(s)
}

func validateDecimals(s string) error {
	if _, err := strconv.ParseUint(s, 10, 8); err != nil {
		return errors.New("must be an integer between 0 and 255")
	}
	return nil
}

func validateInterval(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func validatePositive(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("must be a valid number")
	}
	if !d.IsPositive() {
		return errors.New("must be positive")
	}
	return nil
}

func validatePercent(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("must be a valid number")
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("must be between 0 and 100")
	}
	return nil
}
