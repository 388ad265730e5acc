package embeds

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// CreatePrivateThreadID プライベートスレッド作成ボタンの CustomID
const CreatePrivateThreadID = "create_private_thread"

// BuildPrivateOfferMessage プライベートスレッド作成ボタン付きの案内
func BuildPrivateOfferMessage() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: "🌍 Start Your Private Session",
		Description: "**Play uninterrupted, at your own pace.**\n" +
			"Create a private thread just for you, perfect for solo challenges or games with friends.",
		Color: ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "👥 Multiplayer Control",
				Value: "Use `!invite @<user>` to invite friends, and `!kick @<user>` to remove them from your thread.",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Private threads auto-clean after inactivity."},
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: CreatePrivateThreadID,
						Label:    "Create Private Quiz Thread",
						Style:    discordgo.PrimaryButton,
						Emoji:    &discordgo.ComponentEmoji{Name: "🎮"},
					},
				},
			},
		},
	}
}

// BuildThreadWelcomeEmbed 作成直後のスレッドに送る案内
func BuildThreadWelcomeEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🌍 Welcome to Your Private Session!",
		Description: "This is a private thread where you can play without interruptions. You can invite others using `!invite @<user>`.",
		Color:       ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Starting a Game", Value: "Use `!play <map>` to begin"},
			{Name: "Inviting Others", Value: "Use `!invite @<user>` to add friends"},
			{Name: "Kicking Users", Value: "Use `!kick @<user>` to kick the user"},
		},
	}
}

// ThreadAnnouncement 管理チャンネルへの通知文
func ThreadAnnouncement(userID, guildID, threadID string) string {
	return fmt.Sprintf("🧵 A new private thread was created by <@%s>!\nJoin it here: <%s>", userID, ThreadURL(guildID, threadID))
}

// ThreadURL スレッドへのリンク
func ThreadURL(guildID, threadID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s", guildID, threadID)
}
