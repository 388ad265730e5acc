package version

const (
	// Botのバージョン番号
	Version = "2.0.0"

	// ProjectURL ヘルプに表示するリポジトリ
	ProjectURL = "https://github.com/streakbot/Streak_discord_bot"
)
