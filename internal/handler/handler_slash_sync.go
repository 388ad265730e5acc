package handler

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func (h *Handler) SyncSlashCommands(s *discordgo.Session) error {
	remoteCommands, err := s.ApplicationCommands(s.State.User.ID, "")
	if err != nil {
		return fmt.Errorf("could not fetch remote commands: %w", err)
	}
	localCommands := h.slash.GetSlashDefinitions()

	remoteCmdsMap := make(map[string]*discordgo.ApplicationCommand, len(remoteCommands))
	for _, cmd := range remoteCommands {
		remoteCmdsMap[cmd.Name] = cmd
	}

	for _, localCmd := range localCommands {
		remoteCmd, exists := remoteCmdsMap[localCmd.Name]
		if exists {
			if !commandsAreEqual(localCmd, remoteCmd) {
				log.Info().Str("command", localCmd.Name).Msg("Updating slash command")
				if _, err := s.ApplicationCommandEdit(s.State.User.ID, "", remoteCmd.ID, localCmd); err != nil {
					log.Error().Err(err).Str("command", localCmd.Name).Msg("Failed to update command")
				}
			}
			delete(remoteCmdsMap, localCmd.Name)
		} else {
			log.Info().Str("command", localCmd.Name).Msg("Creating slash command")
			if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", localCmd); err != nil {
				log.Error().Err(err).Str("command", localCmd.Name).Msg("Failed to create command")
			}
		}
	}

	for _, remoteCmd := range remoteCmdsMap {
		log.Info().Str("command", remoteCmd.Name).Msg("Deleting outdated slash command")
		if err := s.ApplicationCommandDelete(s.State.User.ID, "", remoteCmd.ID); err != nil {
			log.Error().Err(err).Str("command", remoteCmd.Name).Msg("Failed to delete command")
		}
	}

	log.Info().Int("commands", len(localCommands)).Msg("Slash command sync complete")
	return nil
}

func commandsAreEqual(c1, c2 *discordgo.ApplicationCommand) bool {
	if c1.Name != c2.Name || c1.Description != c2.Description {
		return false
	}
	if !permissionsEqual(c1.DefaultMemberPermissions, c2.DefaultMemberPermissions) {
		return false
	}
	if len(c1.Options) != len(c2.Options) {
		return false
	}

	opts1 := make([]*discordgo.ApplicationCommandOption, len(c1.Options))
	copy(opts1, c1.Options)
	sort.Slice(opts1, func(i, j int) bool { return opts1[i].Name < opts1[j].Name })

	opts2 := make([]*discordgo.ApplicationCommandOption, len(c2.Options))
	copy(opts2, c2.Options)
	sort.Slice(opts2, func(i, j int) bool { return opts2[i].Name < opts2[j].Name })

	for i := range opts1 {
		if !optionsAreEqual(opts1[i], opts2[i]) {
			return false
		}
	}
	return true
}

func optionsAreEqual(o1, o2 *discordgo.ApplicationCommandOption) bool {
	if o1.Type != o2.Type || o1.Name != o2.Name || o1.Description != o2.Description || o1.Required != o2.Required {
		return false
	}
	if len(o1.Choices) != len(o2.Choices) || len(o1.Options) != len(o2.Options) {
		return false
	}
	if !reflect.DeepEqual(sortedChannelTypes(o1.ChannelTypes), sortedChannelTypes(o2.ChannelTypes)) {
		return false
	}

	// Compare choices
	if len(o1.Choices) > 0 {
		// Sort choices by name for consistent comparison
		choices1 := make([]*discordgo.ApplicationCommandOptionChoice, len(o1.Choices))
		copy(choices1, o1.Choices)
		sort.Slice(choices1, func(i, j int) bool { return choices1[i].Name < choices1[j].Name })

		choices2 := make([]*discordgo.ApplicationCommandOptionChoice, len(o2.Choices))
		copy(choices2, o2.Choices)
		sort.Slice(choices2, func(i, j int) bool { return choices2[i].Name < choices2[j].Name })

		if !reflect.DeepEqual(choices1, choices2) {
			return false
		}
	}

	// Compare sub-options recursively
	if len(o1.Options) > 0 {
		subOpts1 := make([]*discordgo.ApplicationCommandOption, len(o1.Options))
		copy(subOpts1, o1.Options)
		sort.Slice(subOpts1, func(i, j int) bool { return subOpts1[i].Name < subOpts1[j].Name })

		subOpts2 := make([]*discordgo.ApplicationCommandOption, len(o2.Options))
		copy(subOpts2, o2.Options)
		sort.Slice(subOpts2, func(i, j int) bool { return subOpts2[i].Name < subOpts2[j].Name })

		for i := range subOpts1 {
			if !optionsAreEqual(subOpts1[i], subOpts2[i]) {
				return false
			}
		}
	}

	return true
}

func permissionsEqual(p1, p2 *int64) bool {
	if p1 == nil || p2 == nil {
		return p1 == p2
	}
	return *p1 == *p2
}

func sortedChannelTypes(types []discordgo.ChannelType) []discordgo.ChannelType {
	if len(types) == 0 {
		return nil
	}
	out := append([]discordgo.ChannelType(nil), types...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
