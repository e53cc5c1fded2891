package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"upiqr/internal/engine/links"
	"upiqr/internal/engine/render"
	"upiqr/internal/platform/auth"
	"upiqr/internal/platform/config"
)

var version = "v0.1.0"

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	root := &cobra.Command{
		Use:           "upiqr",
		Short:         "Build UPI payment links and QR codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// --- link command --------------------------------------------------------
	linkFlags := &intentFlags{}
	linkCmd := &cobra.Command{
		Use:   "link",
		Short: "Print a upi://pay deep link",
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := links.BuildLink(linkFlags.intent(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	linkFlags.bind(linkCmd)
	root.AddCommand(linkCmd)

	// --- qr command ----------------------------------------------------------
	qrFlags := &intentFlags{}
	var opts qrOptions
	qrCmd := &cobra.Command{
		Use:   "qr",
		Short: "Render a payment QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQR(cmd, qrFlags.intent(cmd), opts)
		},
	}
	qrFlags.bind(qrCmd)
	qrCmd.Flags().StringVarP(&opts.format, "format", "f", "dataurl", "Output format: dataurl, png or svg")
	qrCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to file instead of stdout")
	qrCmd.Flags().StringVar(&opts.dark, "dark", render.DefaultDark, "Module colour (#rrggbb)")
	qrCmd.Flags().StringVar(&opts.light, "light", render.DefaultLight, "Background colour (#rrggbb)")
	qrCmd.Flags().StringVar(&opts.logo, "logo", "", "Logo path, URL or data URI")
	qrCmd.Flags().Float64Var(&opts.logoSize, "logo-size", 0, "Logo side in pixels (default: a sixth of the QR)")
	qrCmd.Flags().StringVar(&opts.backend, "backend", render.DefaultBackend, "Logo backend: "+strings.Join(render.Backends(), ", "))
	qrCmd.Flags().StringVar(&opts.encoder, "encoder", "skip2", "QR encoder: skip2 or rsc")
	root.AddCommand(qrCmd)

	// --- token command -------------------------------------------------------
	var (
		secret string
		ttl    time.Duration
		scopes []string
	)
	tokenCmd := &cobra.Command{
		Use:   "token [merchant-id]",
		Short: "Issue an API access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := auth.NewTokenService(config.JWTConfig{Secret: secret, AccessTokenTTL: ttl})
			token, err := svc.GenerateAccessToken(args[0], scopes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.Flags().StringSliceVar(&scopes, "scope", nil, "Scopes to grant (repeatable, default all)")
	root.AddCommand(tokenCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "upiqr %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

type qrOptions struct {
	format   string
	output   string
	dark     string
	light    string
	logo     string
	logoSize float64
	backend  string
	encoder  string
}

func runQR(cmd *cobra.Command, intent *links.PaymentIntent, opts qrOptions) error {
	// Local files and any remote host are fine here: the caller owns the machine.
	composer, err := render.FromConfig(config.RenderConfig{
		Backend: opts.backend,
		Encoder: opts.encoder,
	}, render.WithLoader(render.NewLogoLoader(10*time.Second, 0)), render.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	img, err := composer.Render(context.Background(), &render.Request{
		Intent:   *intent,
		Dark:     opts.dark,
		Light:    opts.light,
		Logo:     opts.logo,
		LogoSize: opts.logoSize,
		Format:   render.Format(opts.format),
	})
	if err != nil {
		return err
	}
	if img == nil {
		return nil
	}
	if img.LogoFallback {
		log.Warn().Msg("logo could not be drawn, wrote plain QR")
	}

	out := []byte(img.String())
	if img.Format == render.FormatPNG {
		out = img.Data
	}
	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	return os.WriteFile(opts.output, out, 0644)
}
