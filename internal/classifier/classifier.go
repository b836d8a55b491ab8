package classifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leakguard/leakguard/internal/extractor"
	"github.com/leakguard/leakguard/internal/models"
)

// Input carries the message context the classifier needs besides the
// extracted categories.
type Input struct {
	ChannelName    string
	SenderUsername string
	MessageText    string
}

// precedence is the static severity decision table, evaluated top to bottom.
// The order must be preserved exactly: reproducibility of severity labels
// depends only on this table.
var precedence = []struct {
	categories []extractor.Category
	severity   models.Severity
}{
	{[]extractor.Category{
		extractor.CategoryPassword,
		extractor.CategoryAPIKey,
		extractor.CategorySecret,
		extractor.CategoryCreditCard,
		extractor.CategorySSN,
	}, models.SeverityHigh},
	{[]extractor.Category{
		extractor.CategoryEmail,
		extractor.CategoryPhone,
		extractor.CategoryIPAddress,
	}, models.SeverityMedium},
	{[]extractor.Category{
		extractor.CategoryURL,
		extractor.CategoryBitcoinAddress,
		extractor.CategoryEthereumAddress,
	}, models.SeverityLow},
}

// eduDomains and govDomains hold domain suffixes and keywords that mark a
// companion email domain as educational or governmental.
var eduDomains = []string{
	"edu", "edu.au", "edu.br", "edu.cn", "edu.co", "edu.eg", "edu.in",
	"edu.mx", "edu.pe", "edu.ph", "edu.pk", "edu.tr", "edu.vn",
	"ac.uk", "ac.za", "university", "college", "school",
}

var govDomains = []string{
	"gov", "gov.au", "gov.br", "gov.cn", "gov.co", "gov.eg", "gov.in",
	"gov.mx", "gov.pe", "gov.ph", "gov.pk", "gov.tr", "gov.vn",
	"gob", "mil",
}

// Classifier assigns severities to extracted categories using the static
// precedence table. StrongCredentialScore is the escalation threshold: a
// high-severity credential tied to an educational or government domain is
// escalated to critical once its strength score reaches it.
type Classifier struct {
	strongCredentialScore int
}

// New creates a Classifier with the given strength threshold.
func New(strongCredentialScore int) *Classifier {
	return &Classifier{strongCredentialScore: strongCredentialScore}
}

// Classify turns an extracted category mapping into leak records, one per
// (category, match) pair, each independently severity-scored. Severity is
// assigned here once and never recomputed by the pipeline.
func (c *Classifier) Classify(in Input, extracted map[extractor.Category][]string) []models.Leak {
	if len(extracted) == 0 {
		return nil
	}

	domain := companionDomain(extracted)
	now := time.Now().UTC()

	var leaks []models.Leak
	for _, category := range extractor.Categories() {
		values, ok := extracted[category]
		if !ok {
			continue
		}
		for _, value := range values {
			severity := c.severityFor(category, value, domain)
			leaks = append(leaks, models.Leak{
				UUID:           uuid.NewString(),
				SenderUsername: in.SenderUsername,
				Category:       string(category),
				Value:          value,
				Severity:       severity,
				Status:         models.StatusNew,
				Context:        extractor.Snippet(in.MessageText, value),
				RawContent:     in.MessageText,
				SourceURL:      sourceURL(in.ChannelName),
				DetectedAt:     now,
			})
		}
	}
	return leaks
}

func (c *Classifier) severityFor(category extractor.Category, value, domain string) models.Severity {
	for i, row := range precedence {
		for _, cat := range row.categories {
			if cat != category {
				continue
			}
			// Escalation applies only to the credential tier.
			if i == 0 && c.shouldEscalate(value, domain) {
				return models.SeverityCritical
			}
			return row.severity
		}
	}
	return models.SeverityInfo
}

func (c *Classifier) shouldEscalate(value, domain string) bool {
	if domain == "" {
		return false
	}
	if !IsEducationalDomain(domain) && !IsGovernmentDomain(domain) {
		return false
	}
	return StrengthScore(value) >= c.strongCredentialScore
}

// companionDomain derives the domain a credential belongs to from an email
// match in the same message, as in the common email:password dump format.
func companionDomain(extracted map[extractor.Category][]string) string {
	emails, ok := extracted[extractor.CategoryEmail]
	if !ok || len(emails) == 0 {
		return ""
	}
	at := strings.LastIndex(emails[0], "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(emails[0][at+1:])
}

// IsEducationalDomain reports whether the domain belongs to an educational
// institution.
func IsEducationalDomain(domain string) bool {
	return matchesDomainList(domain, eduDomains)
}

// IsGovernmentDomain reports whether the domain belongs to a government body.
func IsGovernmentDomain(domain string) bool {
	return matchesDomainList(domain, govDomains)
}

func matchesDomainList(domain string, list []string) bool {
	domain = strings.ToLower(domain)
	for _, entry := range list {
		if strings.Contains(domain, entry) {
			return true
		}
	}
	return false
}

// StrengthScore scores how strong a leaked credential looks: +1 for length
// of 12 or more, -1 below 8, +1 for a special character, +1 for a digit.
func StrengthScore(value string) int {
	score := 0
	switch {
	case len(value) >= 12:
		score++
	case len(value) < 8:
		score--
	}
	if strings.ContainsAny(value, "!@#$%^&*()_+-=[]{}|;:,.<>?") {
		score++
	}
	if strings.ContainsAny(value, "0123456789") {
		score++
	}
	return score
}

func sourceURL(channelName string) string {
	if channelName == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s", strings.TrimPrefix(channelName, "@"))
}
