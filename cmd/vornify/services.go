package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/vornify-cli/internal/client"
	"github.com/yourusername/vornify-cli/internal/logging"
	"github.com/yourusername/vornify-cli/internal/mail"
	"github.com/yourusername/vornify-cli/internal/output"
	"github.com/yourusername/vornify-cli/internal/printful"
)

// DB flags
var (
	dbDatabase   string
	dbCollection string
	dbData       string
)

// dbCmd sends a raw database command
var dbCmd = &cobra.Command{
	Use:   "db <command>",
	Short: "Send a command to VornifyDB",
	Long: `Sends a command envelope to the database service. Give the command without
its leading dashes ("vornify db read"); the dashed form must follow the flag
terminator ("vornify db -- --read").

Known commands: create, read, update, delete, verify, append, update-field,
delete-field. Other tags are forwarded unchanged.`,
	Example: `  vornify db read --collection users --data '{"email": "a@example.com"}'
  vornify db --collection users -- --read`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := normalizeCommand(args[0])
		data, err := parseJSONObject(dbData)
		if err != nil {
			return err
		}

		c, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := c.DB(cmd.Context(), databaseName(), dbCollection, command, data)
		if err != nil {
			return err
		}
		logging.Info().Str("cmd", "db").Str("command", command).Str("outcome", resp.Outcome.String()).Msg("command sent")
		return printResult(command, resp)
	},
}

// dbVerifyEmailCmd checks whether a user exists
var dbVerifyEmailCmd = &cobra.Command{
	Use:   "verify-email <email>",
	Short: "Check whether an email address exists in the users collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := dbCollection
		if collection == "" {
			collection = "users"
		}

		c, err := newAPIClient()
		if err != nil {
			return err
		}
		exists, err := c.Verify(cmd.Context(), databaseName(), collection, map[string]interface{}{"email": args[0]})
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.PrintJSON(os.Stdout, map[string]interface{}{"email": args[0], "exists": exists})
		}
		if exists {
			output.PrintSuccess(os.Stdout, "Email %q exists in %s", args[0], collection)
		} else {
			fmt.Printf("Email %q does not exist in %s\n", args[0], collection)
		}
		return nil
	},
}

// storageCmd shows database storage statistics
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Show storage statistics for a database",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		stats, err := c.FetchStorageStats(cmd.Context(), databaseName())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.PrintJSON(os.Stdout, stats)
		}
		output.PrintStorageSummary(os.Stdout, stats)
		return nil
	},
}

// payCmd is the parent command for payment subcommands
var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Create and verify payments",
}

// Payment flags
var (
	payAmount    float64
	payCurrency  string
	payType      string
	payProduct   string
	payEmail     string
	payPriceID   string
	payTrialDays int
)

var payPaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Create a payment intent",
	RunE: func(cmd *cobra.Command, args []string) error {
		product, err := parseJSONObject(payProduct)
		if err != nil {
			return fmt.Errorf("--product: %w", err)
		}
		req := client.PaymentRequest{
			Amount:      payAmount,
			Currency:    payCurrency,
			PaymentType: payType,
			ProductData: product,
		}

		c, err := newAPIClient()
		if err != nil {
			return err
		}
		result, err := c.CreatePayment(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.PrintJSON(os.Stdout, result)
		}
		output.PrintSuccess(os.Stdout, "Payment intent created")
		output.PrintKeyValue(os.Stdout, "Payment intent", result.PaymentIntentID)
		output.PrintKeyValue(os.Stdout, "Amount", fmt.Sprintf("%.2f %s", result.Amount, strings.ToUpper(result.Currency)))
		output.PrintKeyValue(os.Stdout, "Client secret", result.ClientSecret)
		return nil
	},
}

var paySubscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Create a subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		product, err := parseJSONObject(payProduct)
		if err != nil {
			return fmt.Errorf("--product: %w", err)
		}
		req := client.SubscriptionRequest{
			CustomerEmail: payEmail,
			PriceID:       payPriceID,
			TrialDays:     payTrialDays,
			ProductData:   product,
		}

		c, err := newAPIClient()
		if err != nil {
			return err
		}
		result, err := c.CreateSubscription(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.PrintJSON(os.Stdout, result)
		}
		output.PrintSuccess(os.Stdout, "Subscription created")
		output.PrintKeyValue(os.Stdout, "Subscription", result.SubscriptionID)
		output.PrintKeyValue(os.Stdout, "Customer", result.CustomerID)
		output.PrintKeyValue(os.Stdout, "Client secret", result.ClientSecret)
		return nil
	},
}

var payVerifyCmd = &cobra.Command{
	Use:   "verify <payment-intent-id>",
	Short: "Verify the status of a payment intent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := c.VerifyPayment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(client.PayVerify, resp)
	},
}

// emailCmd is the parent command for API email subcommands
var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Send email through the API",
}

// Email flags shared by "email send" and "mail send"
var (
	emailTo       string
	emailSubject  string
	emailHTML     string
	emailHTMLFile string
)

var emailSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an HTML email through the email service",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readTextArg(emailHTML, emailHTMLFile, "html")
		if err != nil {
			return err
		}

		c, err := newAPIClient()
		if err != nil {
			return err
		}
		result, err := c.SendEmail(cmd.Context(), client.EmailRequest{
			ToEmail:  emailTo,
			Subject:  emailSubject,
			HTMLBody: body,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.PrintJSON(os.Stdout, result)
		}
		output.PrintSuccess(os.Stdout, "Email sent to %s", emailTo)
		if result.MessageID != "" {
			output.PrintKeyValue(os.Stdout, "Message ID", result.MessageID)
		}
		return nil
	},
}

var emailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the email service is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := c.EmailStatus(cmd.Context())
		if err != nil {
			return err
		}
		return printResult("email test", resp)
	},
}

// mailCmd is the parent command for direct SMTP delivery
var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Send email directly over SMTP",
	Long: `Sends email over an implicit-TLS SMTP session using the credentials in the
smtp config section (or EMAIL_ADDRESS and EMAIL_PASSWORD).`,
}

var mailSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an HTML email over SMTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readTextArg(emailHTML, emailHTMLFile, "html")
		if err != nil {
			return err
		}

		mailer := mail.NewMailer(mail.Settings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTPTimeout(),
		})
		sent, err := mailer.Send(cmd.Context(), mail.Message{
			To:      emailTo,
			Subject: emailSubject,
			HTML:    body,
		})
		if err != nil {
			logging.Error().Str("cmd", "mail-send").Err(err).Msg("delivery failed")
			return err
		}
		logging.Info().Str("cmd", "mail-send").Str("to", emailTo).Msg("delivered")

		if jsonOutput {
			return output.PrintJSON(os.Stdout, map[string]interface{}{"sent": sent, "to": emailTo})
		}
		output.PrintSuccess(os.Stdout, "Email sent to %s via %s:%d", emailTo, cfg.SMTP.Host, cfg.SMTP.Port)
		return nil
	},
}

// productsCmd is the parent command for the print-on-demand catalog
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the Printful store catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List store products",
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := newPrintfulClient()
		if err != nil {
			return err
		}
		products, err := pc.ListProducts(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.PrintJSON(os.Stdout, products)
		}
		output.PrintProductsTable(os.Stdout, products)
		return nil
	},
}

var productsGetCmd = &cobra.Command{
	Use:   "get <product-id>",
	Short: "Show a product and its variants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id: %v", err)
		}
		pc, err := newPrintfulClient()
		if err != nil {
			return err
		}
		detail, err := pc.GetProduct(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.PrintJSON(os.Stdout, detail)
		}
		output.PrintProductDetail(os.Stdout, detail)
		return nil
	},
}

func init() {
	dbCmd.PersistentFlags().StringVar(&dbDatabase, "database", "", "Database name (default from config)")
	dbCmd.PersistentFlags().StringVar(&dbCollection, "collection", "", "Collection name")
	dbCmd.Flags().StringVar(&dbData, "data", "", "Command data as a JSON object or @file")
	dbCmd.AddCommand(dbVerifyEmailCmd)

	storageCmd.Flags().StringVar(&dbDatabase, "database", "", "Database name (default from config)")

	payCmd.AddCommand(payPaymentCmd)
	payCmd.AddCommand(paySubscriptionCmd)
	payCmd.AddCommand(payVerifyCmd)
	payPaymentCmd.Flags().Float64Var(&payAmount, "amount", 0, "Amount in major currency units")
	payPaymentCmd.Flags().StringVar(&payCurrency, "currency", "sek", "Currency code")
	payPaymentCmd.Flags().StringVar(&payType, "type", "onetime", "Payment type: onetime or recurring")
	payPaymentCmd.Flags().StringVar(&payProduct, "product", "", "Product data as a JSON object or @file")
	paySubscriptionCmd.Flags().StringVar(&payEmail, "email", "", "Customer email")
	paySubscriptionCmd.Flags().StringVar(&payPriceID, "price", "", "Price ID (price_...)")
	paySubscriptionCmd.Flags().IntVar(&payTrialDays, "trial-days", 0, "Trial period in days")
	paySubscriptionCmd.Flags().StringVar(&payProduct, "product", "", "Product data as a JSON object or @file")

	emailCmd.AddCommand(emailSendCmd)
	emailCmd.AddCommand(emailTestCmd)
	mailCmd.AddCommand(mailSendCmd)
	for _, c := range []*cobra.Command{emailSendCmd, mailSendCmd} {
		c.Flags().StringVar(&emailTo, "to", "", "Recipient address")
		c.Flags().StringVar(&emailSubject, "subject", "", "Subject line")
		c.Flags().StringVar(&emailHTML, "html", "", "HTML body")
		c.Flags().StringVar(&emailHTMLFile, "html-file", "", "Read the HTML body from a file")
		_ = c.MarkFlagRequired("to")
		_ = c.MarkFlagRequired("subject")
	}

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsGetCmd)
}

// normalizeCommand adds the leading dashes the database service expects
func normalizeCommand(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "--" + s
}

// databaseName returns the --database flag or the configured default
func databaseName() string {
	if dbDatabase != "" {
		return dbDatabase
	}
	return cfg.Database.Name
}

func newPrintfulClient() (*printful.Client, error) {
	t := cfg.PrintfulTimeout()
	if timeout > 0 {
		t = timeout
	}
	return printful.NewClient(cfg.Printful.BaseURL, cfg.Printful.Token, t, logging.Logger)
}
