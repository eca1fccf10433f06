package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
)

type Notifier interface {
	NotifyAchievement(user models.User, achievement models.Achievement) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyAchievement(user models.User, achievement models.Achievement) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	mention := user.Username
	if user.DiscordID != nil {
		mention = fmt.Sprintf("%s (<@%s>)", user.Username, *user.DiscordID)
	}

	message := fmt.Sprintf("🏆 **Achievement Unlocked**\n**User:** %s\n**Achievement:** %s (%s, %d points)\n%s",
		mention,
		achievement.Name,
		achievement.Rarity,
		achievement.Points,
		achievement.Description,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
