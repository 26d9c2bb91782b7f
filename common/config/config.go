package config

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pixai-app/pixai-api/common/env"
	"github.com/pixai-app/pixai-api/common/image"
)

var SystemName = "PixAI"
var ServerAddress = env.String("SERVER_ADDRESS", "http://localhost:4000")

var ServiceName = env.String("SERVICE_NAME", "pixai-api")
var InstanceId = env.String("INSTANCE_ID", uuid.New().String()[:8])

var DebugEnabled = strings.ToLower(os.Getenv("DEBUG")) == "true"
var DebugSQLEnabled = strings.ToLower(os.Getenv("DEBUG_SQL")) == "true"

// JwtSecret signs the bearer tokens issued by the account service.
var JwtSecret = os.Getenv("JWT_SECRET")

var ClipdropAPIKey = os.Getenv("CLIPDROP_API_KEY")
var ClipdropBaseURL = env.String("CLIPDROP_BASE_URL", "https://clipdrop-api.co")

var RelayTimeout = env.Int("RELAY_TIMEOUT", 60) // unit is second
var RelayProxy = os.Getenv("RELAY_PROXY")

var SyncFrequency = env.Int("SYNC_FREQUENCY", 10*60) // unit is second

var MaxUploadSizeMB = env.Int("MAX_UPLOAD_SIZE_MB", 30)
// MaxRequestBodyKB bounds the non-upload image requests, which only carry a prompt.
var MaxRequestBodyKB = env.Int("MAX_REQUEST_BODY_KB", 64)
var AllowedImageTypes = []string{image.MimeJPEG, image.MimePNG, image.MimeWebP}

// MaxUpscaleDimension bounds target_width and target_height of an upscale request.
const MaxUpscaleDimension = 4096

var InitialCredit = env.Int64("INITIAL_CREDIT", 5)
var SeedUserId = os.Getenv("SEED_USER_ID")

var LogConsumeEnabled = env.Bool("LOG_CONSUME_ENABLED", true)

var StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
var StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
var StripeSuccessURL = env.String("STRIPE_SUCCESS_URL", ServerAddress+"/result")
var StripeCancelURL = env.String("STRIPE_CANCEL_URL", ServerAddress+"/buy")
var StripeCurrency = env.String("STRIPE_CURRENCY", "inr")

// CreditPlansJSON overrides the built-in plan list, e.g.
// [{"id":"Basic","price":150,"credits":100,"desc":"Best for personal use."}]
var CreditPlansJSON = os.Getenv("CREDIT_PLANS")

var FrontendDir = os.Getenv("FRONTEND_DIR")
var SwaggerJSONURL = os.Getenv("SWAGGER_JSON_URL")
