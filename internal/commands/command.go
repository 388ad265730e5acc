package commands

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Command 統合コマンドインターフェース
type Command interface {
	Name() string
	Description() string
	// テキストコマンド実行
	ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error
	// スラッシュコマンド実行
	ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error
	// スラッシュコマンド定義（nilを返すとスラッシュコマンドとして登録されない）
	SlashDefinition() *discordgo.ApplicationCommand
}

// Aliased 別名を持つコマンド
type Aliased interface {
	Aliases() []string
}

// Usager ヘルプに表示する書式を持つコマンド
type Usager interface {
	Usage() []string
}

var errUnsupported = errors.New("command does not support this invocation")

// textOnly テキスト専用コマンドに埋め込む
type textOnly struct{}

func (textOnly) ExecuteSlash(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return errUnsupported
}

func (textOnly) SlashDefinition() *discordgo.ApplicationCommand { return nil }

// slashOnly スラッシュ専用コマンドに埋め込む
type slashOnly struct{}

func (slashOnly) ExecuteText(s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	return errUnsupported
}

// Registry コマンドの登録と管理
type Registry struct {
	commands map[string]Command
	aliases  map[string]string
	order    []string
}

// NewRegistry 新しいRegistryを作成
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register コマンドを登録
func (r *Registry) Register(cmd Command) {
	name := strings.ToLower(cmd.Name())
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
	if a, ok := cmd.(Aliased); ok {
		for _, alias := range a.Aliases() {
			r.aliases[strings.ToLower(alias)] = name
		}
	}
}

// Get コマンドを取得（別名も可）
func (r *Registry) Get(name string) (Command, bool) {
	name = strings.ToLower(name)
	if cmd, exists := r.commands[name]; exists {
		return cmd, true
	}
	if target, ok := r.aliases[name]; ok {
		return r.commands[target], true
	}
	return nil, false
}

// All 登録順に全てのコマンドを取得
func (r *Registry) All() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// GetSlashDefinitions スラッシュコマンド定義を取得
func (r *Registry) GetSlashDefinitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0)
	for _, cmd := range r.All() {
		if def := cmd.SlashDefinition(); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// respondEphemeral スラッシュコマンドに本人だけ見える返信をする
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respond 全員に見える返信
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

// reply 元メッセージへの返信
func reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) error {
	_, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	return err
}

// optionMap スラッシュコマンドのオプションを名前で引けるようにする
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

// interactionUser ギルド内ならメンバー、DMならユーザー
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
