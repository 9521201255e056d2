package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/microsoft"
	"github.com/PiotrWarzachowski/blue-launcher/internal/storage"
	"github.com/PiotrWarzachowski/blue-launcher/providers"
)

// LoginCommand signs in with a Microsoft account using a device code
var LoginCommand = &cli.Command{
	Name:  "login",
	Usage: "Sign in with your Microsoft account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Sign in again even if an account is stored",
		},
		&cli.BoolFlag{
			Name:  "no-browser",
			Usage: "Do not open the verification page automatically",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug output",
		},
	},
	Action: loginAction,
}

var LogoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Forget the stored account",
	Action: logoutAction,
}

var StatusCommand = &cli.Command{
	Name:   "status",
	Usage:  "Show the signed-in account",
	Action: statusAction,
}

type poller interface {
	Poll(ctx context.Context, s *microsoft.DeviceAuthorizationSession) (*microsoft.PollResult, error)
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := providers.Setup(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	if !cmd.Bool("force") {
		stored, err := store.LoadAccount()
		if err == nil && stored != nil && stored.Tokens.Valid() && !stored.Tokens.Expired(time.Now()) {
			fmt.Printf("✓ Already signed in as %s\n", stored.Profile.Name)
			fmt.Printf("  Account storage: %s\n", store.GetBasePath())
			return nil
		}
	}

	provider, err := providers.NewAuthProvider(cfg, store, logger)
	if err != nil {
		if errors.Is(err, config.ErrConfigMissing) {
			fmt.Println("❌ No application client ID configured")
			fmt.Println("\nSet BLUE_LAUNCHER_CLIENT_ID to your Azure application's client ID")
			return cli.Exit("", 1)
		}
		return err
	}

	session, err := provider.Begin(ctx)
	if err != nil {
		fmt.Printf("❌ %s\n", describeAuthError(err))
		return cli.Exit("", 1)
	}

	fmt.Printf("🔑 To sign in, open %s and enter the code %s\n", session.VerificationURI, session.UserCode)
	if !cmd.Bool("no-browser") {
		if err := openBrowser(session.VerificationURI); err != nil {
			logger.Debug("could not open browser", zap.Error(err))
		}
	}
	fmt.Println("Waiting for approval...")

	waitCtx, cancel := context.WithDeadline(ctx, session.ExpiresAt)
	defer cancel()

	account, err := waitForApproval(waitCtx, provider, session, logger)
	if err != nil {
		fmt.Printf("\n❌ %s\n", describeAuthError(err))
		return cli.Exit("", 1)
	}

	fmt.Printf("\n✓ Successfully signed in as %s\n", account.Profile.Name)
	fmt.Printf("  UUID: %s\n", account.Profile.ID)
	fmt.Printf("  Account saved to: %s\n", store.GetBasePath())

	return nil
}

// waitForApproval polls at the session's interval until the chain completes
// or fails. Transport errors are retried on the next tick.
func waitForApproval(ctx context.Context, p poller, s *microsoft.DeviceAuthorizationSession, logger *zap.Logger) (*microsoft.Account, error) {
	timer := time.NewTimer(s.PollInterval())
	defer timer.Stop()

	for {
		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, microsoft.ErrExpired
			}
			return nil, err
		}

		res, err := p.Poll(ctx, s)
		switch {
		case err == nil && !res.Pending:
			return res.Account, nil
		case err != nil && s.State().Terminal():
			return nil, err
		case err != nil:
			logger.Warn("sign-in poll failed, retrying", zap.Error(err))
		}

		timer.Reset(s.PollInterval())
	}
}

func describeAuthError(err error) string {
	var ae *microsoft.AuthError
	if !errors.As(err, &ae) {
		return err.Error()
	}

	switch ae.Reason {
	case microsoft.ReasonExpired:
		return "The sign-in code expired. Run 'blue-launcher login' again."
	case microsoft.ReasonXSTSDenied:
		if ae.Description != "" {
			return "Xbox Live refused the account: " + ae.Description
		}
		return "Xbox Live refused the account"
	case microsoft.ReasonNoEntitlement:
		return "This Microsoft account does not own Minecraft"
	default:
		return err.Error()
	}
}

func logoutAction(ctx context.Context, cmd *cli.Command) error {
	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	if !store.HasAccount() {
		fmt.Println("Not currently signed in")
		return nil
	}

	stored, _ := store.LoadAccount()
	if err := store.DeleteAccount(); err != nil {
		return err
	}

	if stored != nil {
		fmt.Printf("✓ Signed out %s\n", stored.Profile.Name)
	} else {
		fmt.Println("✓ Stored account deleted")
	}
	return nil
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	stored, err := store.LoadAccount()
	if err != nil {
		fmt.Println("Status: Stored account corrupted")
		fmt.Println("\nUse 'blue-launcher login --force' to sign in again")
		return nil
	}
	if stored == nil {
		fmt.Println("Status: Not signed in")
		fmt.Println("\nUse 'blue-launcher login' to authenticate")
		return nil
	}

	fmt.Println("Status: Signed in")
	fmt.Printf("  Player: %s\n", stored.Profile.Name)
	fmt.Printf("  UUID: %s\n", stored.Profile.ID)
	if stored.Profile.SkinVariant != "" {
		fmt.Printf("  Skin: %s\n", stored.Profile.SkinVariant)
	}

	switch {
	case !stored.Tokens.Valid():
		fmt.Println("  Token: Incomplete (sign in again)")
	case stored.Tokens.Expired(time.Now()):
		fmt.Println("  Token: Expired (sign in again)")
	case stored.Tokens.MinecraftTokenExpiry.IsZero():
		fmt.Println("  Token: Valid")
	default:
		fmt.Printf("  Token: Valid until %s\n", stored.Tokens.MinecraftTokenExpiry.Local().Format("Jan 2, 3:04 PM"))
	}

	fmt.Printf("  Storage: %s\n", store.GetBasePath())

	return nil
}
