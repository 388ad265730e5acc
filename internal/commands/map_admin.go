package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/config"
	"Streak_discord_bot/internal/storage"
)

// 分布画像の最大サイズ
const maxDistributionBytes = 8 << 20

// AddMapCommand /add_map
type AddMapCommand struct {
	slashOnly
	maps      *config.MapsConfig
	settings  *config.SettingsManager
	assetsDir string
	client    *http.Client
}

func NewAddMapCommand(maps *config.MapsConfig, settings *config.SettingsManager, assetsDir string) *AddMapCommand {
	return &AddMapCommand{
		maps:      maps,
		settings:  settings,
		assetsDir: assetsDir,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AddMapCommand) Name() string        { return "add_map" }
func (c *AddMapCommand) Description() string { return "Add a playable map (admin channel only)" }

func (c *AddMapCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Map name", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "aliases", Description: "Comma-separated aliases", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "slug", Description: "WorldGuessr map slug (derived from the name if omitted)"},
			{Type: discordgo.ApplicationCommandOptionAttachment, Name: "distribution", Description: "Location distribution image"},
		},
	}
}

func (c *AddMapCommand) ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !inAdminChannel(c.settings, i) {
		return respond(s, i, "This command can only be used within the admin channel.")
	}

	opts := optionMap(i)
	name := strings.TrimSpace(opts["name"].StringValue())
	entry := config.MapEntry{Aliases: splitAliases(opts["aliases"].StringValue())}
	if opt, ok := opts["slug"]; ok {
		entry.Slug = strings.TrimSpace(opt.StringValue())
	}

	var attachment *discordgo.MessageAttachment
	if opt, ok := opts["distribution"]; ok {
		if id, ok := opt.Value.(string); ok {
			attachment = i.ApplicationCommandData().Resolved.Attachments[id]
		}
	}

	if attachment == nil {
		if err := c.maps.Add(name, entry); err != nil {
			return err
		}
		return respond(s, i, fmt.Sprintf("Finished adding map \"%s\"!", name))
	}

	// 画像のダウンロードに時間がかかるので先に応答を保留する
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	content := fmt.Sprintf("Finished adding map \"%s\"!", name)
	fileName := filepath.Base(attachment.Filename)
	if err := c.download(attachment.URL, filepath.Join(c.assetsDir, fileName)); err != nil {
		log.Error().Err(err).Str("map", name).Msg("Failed to save distribution image")
		content = fmt.Sprintf("Added map \"%s\", but the distribution image could not be saved.", name)
	} else {
		entry.Distribution = fileName
	}
	if err := c.maps.Add(name, entry); err != nil {
		content = "❌ Failed to save the map: " + err.Error()
	}

	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}

func (c *AddMapCommand) download(url, dest string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDistributionBytes))
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(dest, data)
}

func splitAliases(raw string) []string {
	var out []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// DeleteMapCommand /delete_map
type DeleteMapCommand struct {
	slashOnly
	maps     *config.MapsConfig
	settings *config.SettingsManager
}

func NewDeleteMapCommand(maps *config.MapsConfig, settings *config.SettingsManager) *DeleteMapCommand {
	return &DeleteMapCommand{maps: maps, settings: settings}
}

func (c *DeleteMapCommand) Name() string        { return "delete_map" }
func (c *DeleteMapCommand) Description() string { return "Remove a playable map (admin channel only)" }

func (c *DeleteMapCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Map name or alias", Required: true},
		},
	}
}

func (c *DeleteMapCommand) ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !inAdminChannel(c.settings, i) {
		return respond(s, i, "This command can only be used within the admin channel.")
	}

	input := optionMap(i)["name"].StringValue()
	if _, ok := c.maps.Resolve(input); !ok {
		return respond(s, i, fmt.Sprintf("No map found named \"%s\"", input))
	}
	name, err := c.maps.Delete(input)
	if err != nil {
		return err
	}
	return respond(s, i, fmt.Sprintf("Finished deleting map \"%s\"!", name))
}

func inAdminChannel(settings *config.SettingsManager, i *discordgo.InteractionCreate) bool {
	gs, ok := settings.GetGuildSettings(i.GuildID)
	return ok && gs.AdminChannel != "" && gs.AdminChannel == i.ChannelID
}
