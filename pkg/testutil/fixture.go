package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/repository"
)

const (
	Wallet1 = "0x00000000000000000000000000000000000000a1"
	Wallet2 = "0x00000000000000000000000000000000000000a2"
)

var (
	User1 = &entity.User{
		Base:          entity.Base{ID: "user1"},
		Name:          "user1",
		WalletAddress: sql.NullString{Valid: true, String: Wallet1},
		Level:         1,
		PassportTier:  entity.PassportTierBronze,
	}

	User2 = &entity.User{
		Base:          entity.Base{ID: "user2"},
		Name:          "user2",
		WalletAddress: sql.NullString{Valid: true, String: Wallet2},
		Level:         1,
		PassportTier:  entity.PassportTierBronze,
	}

	// QuestTokenAndNFT grants 50 TPX, an NFT and 100 XP.
	QuestTokenAndNFT = &entity.Quest{
		Base:  entity.Base{ID: "quest_token_nft"},
		Title: "Haunted Lighthouse",
		RewardSpec: entity.RewardSpec{
			RewardXP:       100,
			RewardTPX:      50,
			HasNFT:         true,
			NFTName:        "Lighthouse Ghost",
			NFTDescription: "Met the ghost of the lighthouse keeper",
			NFTImage:       "https://example.com/ghost.png",
			NFTAttributes: entity.Array[entity.NFTAttribute]{
				{TraitType: "Location", Value: "Lighthouse"},
				{TraitType: "Rarity", Value: "Rare"},
			},
		},
	}

	// QuestTokenOnly grants 25 TPX and 50 XP.
	QuestTokenOnly = &entity.Quest{
		Base:  entity.Base{ID: "quest_token"},
		Title: "Graveyard Walk",
		RewardSpec: entity.RewardSpec{
			RewardXP:  50,
			RewardTPX: 25,
		},
	}

	// QuestXPOnly grants XP only.
	QuestXPOnly = &entity.Quest{
		Base:  entity.Base{ID: "quest_xp"},
		Title: "Pumpkin Patch",
		RewardSpec: entity.RewardSpec{
			RewardXP: 30,
		},
	}

	// QuestNotReviewed is completed by user1 but still pending review.
	QuestNotReviewed = &entity.Quest{
		Base:  entity.Base{ID: "quest_not_reviewed"},
		Title: "Witch Market",
		RewardSpec: entity.RewardSpec{
			RewardXP:  10,
			RewardTPX: 5,
		},
	}

	Users  = []*entity.User{User1, User2}
	Quests = []*entity.Quest{QuestTokenAndNFT, QuestTokenOnly, QuestXPOnly, QuestNotReviewed}
)

// CreateFixtureDb inserts users, quests and a verified completion of every
// quest for every user, except QuestNotReviewed which stays pending.
func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertQuests(ctx)
	InsertQuestCompletions(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, u := range Users {
		user := *u
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}

func InsertQuests(ctx context.Context) {
	questRepo := repository.NewQuestRepository()
	for _, q := range Quests {
		quest := *q
		if err := questRepo.Create(ctx, &quest); err != nil {
			panic(err)
		}
	}
}

func InsertQuestCompletions(ctx context.Context) {
	completionRepo := repository.NewQuestCompletionRepository()
	for _, u := range Users {
		for _, q := range Quests {
			status := entity.QuestCompletionVerified
			if q.ID == QuestNotReviewed.ID {
				status = entity.QuestCompletionPending
			}

			err := completionRepo.Create(ctx, &entity.QuestCompletion{
				Base:        entity.Base{ID: u.ID + "_" + q.ID},
				UserID:      u.ID,
				QuestID:     q.ID,
				Status:      status,
				ProofURL:    "https://example.com/proof.jpg",
				CompletedAt: sql.NullTime{Valid: true, Time: time.Now()},
			})
			if err != nil {
				panic(err)
			}
		}
	}
}
