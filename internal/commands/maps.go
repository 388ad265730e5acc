package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"

	"Streak_discord_bot/internal/embeds"
)

// MapsCommand !maps
type MapsCommand struct {
	textOnly
	maps MapLister
}

func NewMapsCommand(maps MapLister) *MapsCommand {
	return &MapsCommand{maps: maps}
}

func (c *MapsCommand) Name() string { return "maps" }

func (c *MapsCommand) Description() string { return "Show all available maps" }

func (c *MapsCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	_, err := s.ChannelMessageSendEmbed(m.ChannelID, embeds.BuildMapsEmbed(c.maps.Names()))
	return err
}

// DistributionSource 分布画像のファイル名を引く（config.MapsConfig）
type DistributionSource interface {
	Distribution(input string) (mapName, file string, ok bool)
}

// DistributionCommand !map <map>（locs / locations / distribution も可）
type DistributionCommand struct {
	textOnly
	maps      DistributionSource
	assetsDir string
}

func NewDistributionCommand(maps DistributionSource, assetsDir string) *DistributionCommand {
	return &DistributionCommand{maps: maps, assetsDir: assetsDir}
}

func (c *DistributionCommand) Name() string { return "map" }

func (c *DistributionCommand) Aliases() []string {
	return []string{"locs", "locations", "distribution"}
}

func (c *DistributionCommand) Description() string { return "Show where a map's locations are" }

func (c *DistributionCommand) Usage() []string { return []string{"!map <map>"} }

func (c *DistributionCommand) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	mapName, file, ok := c.maps.Distribution(strings.Join(args, " "))
	if !ok {
		return reply(s, m, "❌ Unknown map. Try `abe`, `abaf`, or full names like `a balanced europe`.")
	}

	f, err := os.Open(filepath.Join(c.assetsDir, filepath.Base(file)))
	if errors.Is(err, fs.ErrNotExist) {
		return reply(s, m, "❌ Image file not found.")
	}
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(file)
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embeds.BuildDistributionEmbed(mapName, name)},
		Files:  []*discordgo.File{{Name: name, Reader: f}},
	})
	return err
}
