package social

import (
	"github.com/crewlink/server/model"
	"gorm.io/gorm"
)

// createSymmetricEdge inserts both directed rows of a friendship,
// (a,b) and (b,a), accepted. Must run inside a transaction: a single
// surviving row would be a one-sided friendship, which may not persist.
func createSymmetricEdge(tx *gorm.DB, a, b int64) error {
	edges := []model.Friendship{
		{UserID: a, FriendID: b, IsAccepted: true},
		{UserID: b, FriendID: a, IsAccepted: true},
	}
	return tx.Create(&edges).Error
}

// deleteSymmetricEdge removes both directed rows between a and b and
// reports how many rows went away. Must run inside a transaction.
func deleteSymmetricEdge(tx *gorm.DB, a, b int64) (int64, error) {
	res := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		a, b, b, a).
		Delete(&model.Friendship{})
	return res.RowsAffected, res.Error
}

// friendshipExists reports whether an accepted friendship exists
// between the pair, in either direction.
func friendshipExists(db *gorm.DB, a, b int64) (bool, error) {
	var n int64
	err := db.Model(&model.Friendship{}).
		Where("is_accepted = ? AND ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))",
			true, a, b, b, a).
		Count(&n).Error
	return n > 0, err
}

// blockExists reports whether either user has blocked the other.
func blockExists(db *gorm.DB, a, b int64) (bool, error) {
	var n int64
	err := db.Model(&model.BlockedUser{}).
		Where("(user_id = ? AND blocked_user_id = ?) OR (user_id = ? AND blocked_user_id = ?)",
			a, b, b, a).
		Count(&n).Error
	return n > 0, err
}
